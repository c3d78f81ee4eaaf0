// Package testkit holds checks shared by parser and detector tests.
package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"sclint/internal/jsast"
)

// CheckRangeInvariants runs a minimal set of range invariants on a parsed tree:
// 1) every attached range indexes text and its positions agree with its offsets
// 2) a child range lies inside the nearest ranged ancestor
// 3) sibling ranges follow source order without overlapping
func CheckRangeInvariants(root jsast.Node, text string) error {
	if jsast.IsNil(root) {
		return fmt.Errorf("nil root")
	}
	lenText, err := safecast.Conv[uint32](len(text))
	if err != nil {
		return fmt.Errorf("len text overflow: %w", err)
	}
	c := checker{text: text, lenText: lenText, lines: lineStarts(text)}
	return c.check(root, nil)
}

type checker struct {
	text    string
	lenText uint32
	lines   []uint32
}

func (c *checker) check(n jsast.Node, parent *jsast.Range) error {
	r, ok := n.Range()
	if ok {
		if r.StartOffset > r.EndOffset || r.EndOffset > c.lenText {
			return fmt.Errorf("%s range %d..%d is outside text of %d bytes", n.Type(), r.StartOffset, r.EndOffset, c.lenText)
		}
		if got := c.position(r.StartOffset); got != r.Start {
			return fmt.Errorf("%s start position %v does not match offset %d (%v)", n.Type(), r.Start, r.StartOffset, got)
		}
		if got := c.position(r.EndOffset); got != r.End {
			return fmt.Errorf("%s end position %v does not match offset %d (%v)", n.Type(), r.End, r.EndOffset, got)
		}
		// ребёнок внутри ближайшего предка с диапазоном
		if parent != nil && !parent.Contains(r) {
			return fmt.Errorf("%s range %v is outside parent range %v", n.Type(), r, *parent)
		}
		parent = &r
	}

	var prev *jsast.Range
	for _, child := range jsast.Children(n) {
		if err := c.check(child, parent); err != nil {
			return err
		}
		cr, ok := child.Range()
		if !ok {
			continue
		}
		if prev != nil && cr.StartOffset < prev.EndOffset {
			return fmt.Errorf("%s child %v overlaps previous sibling %v", n.Type(), cr, *prev)
		}
		prev = &cr
	}
	return nil
}

// position mirrors the parser: 1-based line, 0-based byte column.
func (c *checker) position(off uint32) jsast.Position {
	line := 0
	for line+1 < len(c.lines) && c.lines[line+1] <= off {
		line++
	}
	lineNo, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		lineNo = 0
	}
	return jsast.Position{Line: lineNo, Column: off - c.lines[line]}
}

func lineStarts(text string) []uint32 {
	starts := []uint32{0}
	off := 0
	for {
		i := strings.IndexByte(text[off:], '\n')
		if i < 0 {
			return starts
		}
		off += i + 1
		start, err := safecast.Conv[uint32](off)
		if err != nil {
			return starts
		}
		starts = append(starts, start)
	}
}
