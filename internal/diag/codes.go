package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Правила линтера
	LintInfo         Code = 1000
	LintShortCircuit Code = 1001

	// I/O
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:      "Unknown error",
		LintInfo:         "Lint information",
		LintShortCircuit: "short-circuit may skip evaluation of the right operand",
		IOInfo:           "I/O information",
		IOLoadFileError:  "I/O load file error",
	}

	codeRuleName = map[Code]string{
		LintShortCircuit: "short-circuit-skip",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

// RuleName returns the kebab-case rule name used by SARIF and the LSP, or the ID
// for codes that are not lint rules.
func (c Code) RuleName() string {
	if name, ok := codeRuleName[c]; ok {
		return name
	}
	return c.ID()
}

// IsRule reports whether the code belongs to a lint rule.
func (c Code) IsRule() bool {
	_, ok := codeRuleName[c]
	return ok
}

// Rules lists lint rule codes in ascending order.
func Rules() []Code {
	return []Code{LintShortCircuit}
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
