// Package lint implements the short-circuit rule: the right operand of && or ||
// is evaluated only when the left operand does not already decide the result,
// so a call or a binary expression placed there may silently never run.
package lint

import (
	"fmt"

	"sclint/internal/diag"
	"sclint/internal/jsast"
)

// MessagePrefix starts every finding message.
const MessagePrefix = "Warning: Short-circuit may skip evaluation of "

// Finding is one flagged right operand.
type Finding struct {
	Range    jsast.Range // right operand
	Message  string
	Severity diag.Severity
	Operator string      // && или ||
	Expr     jsast.Range // весь LogicalExpression; нулевой, если у него нет range
}

// Detect walks root and reports every && / || whose right operand is a
// CallExpression or a BinaryExpression. Ranges are interpreted against text;
// nodes whose range is missing or does not fit text are skipped.
// The result is in pre-order and is never nil.
func Detect(text string, root jsast.Node) []Finding {
	findings := make([]Finding, 0)
	jsast.Walk(root, func(n jsast.Node) {
		logical, ok := n.(*jsast.LogicalExpression)
		if !ok || logical == nil || !shortCircuits(logical.Operator) {
			return
		}
		if !isComplex(logical.Right) {
			return
		}
		r, ok := logical.Right.Range()
		if !ok {
			return
		}
		snippet, ok := r.Slice(text)
		if !ok {
			return
		}
		f := Finding{
			Range:    r,
			Message:  Message(snippet),
			Severity: diag.SevWarning,
			Operator: logical.Operator,
		}
		if expr, ok := logical.Range(); ok && expr.Valid(len(text)) {
			f.Expr = expr
		}
		findings = append(findings, f)
	})
	return findings
}

// Message formats the finding text for the given operand source.
func Message(operand string) string {
	return fmt.Sprintf("%s'%s'", MessagePrefix, operand)
}

// ?? тоже LogicalExpression, но правило его не трогает
func shortCircuits(op string) bool {
	return op == "&&" || op == "||"
}

func isComplex(n jsast.Node) bool {
	if jsast.IsNil(n) {
		return false
	}
	switch n.Type() {
	case jsast.TypeCall, jsast.TypeBinary:
		return true
	}
	return false
}
