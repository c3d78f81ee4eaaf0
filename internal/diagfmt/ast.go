package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sclint/internal/jsast"
)

// ASTNodeOutput is the JSON form of a jsast node.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Operator string          `json:"operator,omitempty"`
	Range    *RangeOutput    `json:"range,omitempty"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// RangeOutput mirrors jsast.Range: offsets in bytes, 1-based lines, 0-based columns.
type RangeOutput struct {
	Start     [2]uint32 `json:"start"` // line, column
	End       [2]uint32 `json:"end"`
	StartByte uint32    `json:"start_byte"`
	EndByte   uint32    `json:"end_byte"`
}

const maxLeafText = 40

// FormatASTPretty печатает дерево в виде
//
//	Program 1:0-1:10
//	└─ ExpressionStatement 1:0-1:10
//	   └─ LogicalExpression (&&) 1:0-1:10
func FormatASTPretty(w io.Writer, root jsast.Node, text string) error {
	if jsast.IsNil(root) {
		return fmt.Errorf("empty syntax tree")
	}
	fmt.Fprintln(w, describe(root, text))
	writeChildren(w, root, text, "")
	return nil
}

func writeChildren(w io.Writer, n jsast.Node, text, prefix string) {
	children := jsast.Children(n)
	for i, child := range children {
		isLast := i == len(children)-1
		branch, next := "├─ ", "│  "
		if isLast {
			branch, next = "└─ ", "   "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, describe(child, text))
		writeChildren(w, child, text, prefix+next)
	}
}

func describe(n jsast.Node, text string) string {
	var b strings.Builder
	b.WriteString(n.Type())
	if op := operatorOf(n); op != "" {
		fmt.Fprintf(&b, " (%s)", op)
	}
	if r, ok := n.Range(); ok {
		b.WriteByte(' ')
		b.WriteString(r.String())
		if len(jsast.Children(n)) == 0 {
			if s, ok := r.Slice(text); ok && s != "" {
				fmt.Fprintf(&b, " %q", shorten(s))
			}
		}
	}
	return b.String()
}

// FormatASTJSON печатает дерево как JSON.
func FormatASTJSON(w io.Writer, root jsast.Node, text string) error {
	if jsast.IsNil(root) {
		return fmt.Errorf("empty syntax tree")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildASTOutput(root, text))
}

func buildASTOutput(n jsast.Node, text string) ASTNodeOutput {
	out := ASTNodeOutput{
		Type:     n.Type(),
		Operator: operatorOf(n),
	}
	children := jsast.Children(n)
	if r, ok := n.Range(); ok {
		out.Range = &RangeOutput{
			Start:     [2]uint32{r.Start.Line, r.Start.Column},
			End:       [2]uint32{r.End.Line, r.End.Column},
			StartByte: r.StartOffset,
			EndByte:   r.EndOffset,
		}
		if len(children) == 0 {
			out.Text, _ = r.Slice(text)
		}
	}
	for _, child := range children {
		out.Children = append(out.Children, buildASTOutput(child, text))
	}
	return out
}

func operatorOf(n jsast.Node) string {
	switch v := n.(type) {
	case *jsast.LogicalExpression:
		return v.Operator
	case *jsast.BinaryExpression:
		return v.Operator
	}
	return ""
}

func shorten(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= maxLeafText {
		return s
	}
	return string([]rune(s)[:maxLeafText-1]) + "…"
}
