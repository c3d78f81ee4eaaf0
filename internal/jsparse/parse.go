// Package jsparse adapts the tree-sitter JavaScript grammar to the jsast model.
package jsparse

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"sclint/internal/jsast"
)

// ErrSyntax is wrapped by every SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the first place where the grammar could not match the input.
type SyntaxError struct {
	Offset uint32
	Pos    jsast.Position
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column+1, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Parse parses src as JavaScript and converts the result into a jsast tree.
// Input the grammar can only recover from (ERROR or MISSING nodes) is a
// *SyntaxError; no tree is returned in that case.
func Parse(ctx context.Context, src []byte) (jsast.Node, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter parse: no tree produced")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.IsNull() {
		return nil, fmt.Errorf("tree-sitter parse: empty root")
	}
	if root.HasError() {
		return nil, firstSyntaxError(root, src)
	}

	c := converter{src: src}
	return c.convert(root), nil
}

// ParseString is Parse for in-memory text.
func ParseString(ctx context.Context, text string) (jsast.Node, error) {
	return Parse(ctx, []byte(text))
}

func firstSyntaxError(n *sitter.Node, src []byte) error {
	bad := findBadNode(n)
	if bad == nil {
		bad = n
	}
	start := bad.StartPoint()
	e := &SyntaxError{
		Offset: bad.StartByte(),
		Pos:    jsast.Position{Line: start.Row + 1, Column: start.Column},
	}
	switch {
	case bad.IsMissing():
		e.Msg = fmt.Sprintf("missing %s", bad.Type())
	case bad.Type() == "ERROR":
		e.Msg = fmt.Sprintf("unexpected %s", snippet(bad, src))
	default:
		e.Msg = "invalid syntax"
	}
	return e
}

// findBadNode returns the first ERROR or MISSING node in source order.
func findBadNode(n *sitter.Node) *sitter.Node {
	if n == nil || n.IsNull() {
		return nil
	}
	if n.IsMissing() || n.Type() == "ERROR" {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := findBadNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func snippet(n *sitter.Node, src []byte) string {
	const maxLen = 24
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(src) || start > end {
		return "input"
	}
	text := string(src[start:end])
	if text == "" {
		return "end of input"
	}
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}
	return fmt.Sprintf("%q", text)
}
