package jsparse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"sclint/internal/jsast"
)

type converter struct {
	src []byte
}

func (c *converter) convert(n *sitter.Node) jsast.Node {
	if n == nil || n.IsNull() {
		return nil
	}

	switch n.Type() {
	case "parenthesized_expression":
		// скобки не являются узлом, как в ESTree
		inner := c.namedChildren(n)
		if len(inner) == 1 {
			return c.convert(inner[0])
		}
	case "binary_expression":
		return c.binary(n)
	case "call_expression":
		return c.call(n)
	}
	return c.generic(n)
}

func (c *converter) binary(n *sitter.Node) jsast.Node {
	op := ""
	if opNode := field(n, "operator"); opNode != nil {
		op = opNode.Type()
	}
	left := c.convert(field(n, "left"))
	right := c.convert(field(n, "right"))
	loc := rangeOf(n)

	if isLogicalOperator(op) {
		return &jsast.LogicalExpression{Operator: op, Left: left, Right: right, Loc: loc}
	}
	return &jsast.BinaryExpression{Operator: op, Left: left, Right: right, Loc: loc}
}

func (c *converter) call(n *sitter.Node) jsast.Node {
	callee := c.convert(field(n, "function"))
	args := field(n, "arguments")

	if args != nil && args.Type() == "template_string" {
		g := &jsast.Generic{Kind: "TaggedTemplateExpression", Loc: rangeOf(n)}
		if callee != nil {
			g.Children = append(g.Children, callee)
		}
		if quasi := c.convert(args); quasi != nil {
			g.Children = append(g.Children, quasi)
		}
		return g
	}

	call := &jsast.CallExpression{Callee: callee, Loc: rangeOf(n)}
	if args != nil {
		for _, a := range c.namedChildren(args) {
			if conv := c.convert(a); conv != nil {
				call.Arguments = append(call.Arguments, conv)
			}
		}
	}
	return call
}

func (c *converter) generic(n *sitter.Node) jsast.Node {
	kind := n.Type()
	g := &jsast.Generic{Kind: estreeName(kind), Loc: rangeOf(n)}
	if leafKinds[kind] {
		return g
	}
	for _, child := range c.namedChildren(n) {
		// аргументы new/super раскладываем в родителя, как в ESTree
		if child.Type() == "arguments" {
			for _, a := range c.namedChildren(child) {
				if conv := c.convert(a); conv != nil {
					g.Children = append(g.Children, conv)
				}
			}
			continue
		}
		if conv := c.convert(child); conv != nil {
			g.Children = append(g.Children, conv)
		}
	}
	return g
}

// namedChildren returns named children in source order without comments.
func (c *converter) namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.IsNull() || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func field(n *sitter.Node, name string) *sitter.Node {
	child := n.ChildByFieldName(name)
	if child == nil || child.IsNull() {
		return nil
	}
	return child
}

func rangeOf(n *sitter.Node) *jsast.Range {
	start, end := n.StartPoint(), n.EndPoint()
	return &jsast.Range{
		StartOffset: n.StartByte(),
		EndOffset:   n.EndByte(),
		Start:       jsast.Position{Line: start.Row + 1, Column: start.Column},
		End:         jsast.Position{Line: end.Row + 1, Column: end.Column},
	}
}

func isLogicalOperator(op string) bool {
	switch op {
	case "&&", "||", "??":
		return true
	}
	return false
}

// leafKinds are literal-like nodes whose grammar children (string fragments,
// regex flags) have no ESTree counterpart.
var leafKinds = map[string]bool{
	"string":                        true,
	"number":                        true,
	"regex":                         true,
	"identifier":                    true,
	"property_identifier":           true,
	"private_property_identifier":   true,
	"shorthand_property_identifier": true,
	"statement_identifier":          true,
	"true":                          true,
	"false":                         true,
	"null":                          true,
	"undefined":                     true,
	"this":                          true,
	"super":                         true,
	"hash_bang_line":                true,
}

var estreeNames = map[string]string{
	"program":                         "Program",
	"identifier":                      "Identifier",
	"property_identifier":             "Identifier",
	"shorthand_property_identifier":   "Identifier",
	"private_property_identifier":     "PrivateIdentifier",
	"statement_identifier":            "Identifier",
	"string":                          "Literal",
	"number":                          "Literal",
	"regex":                           "Literal",
	"true":                            "Literal",
	"false":                           "Literal",
	"null":                            "Literal",
	"undefined":                       "Identifier",
	"template_string":                 "TemplateLiteral",
	"this":                            "ThisExpression",
	"super":                           "Super",
	"subscript_expression":            "MemberExpression",
	"augmented_assignment_expression": "AssignmentExpression",
	"ternary_expression":              "ConditionalExpression",
	"arrow_function":                  "ArrowFunctionExpression",
	"function":                        "FunctionExpression",
	"function_expression":             "FunctionExpression",
	"generator_function":              "FunctionExpression",
	"generator_function_declaration":  "FunctionDeclaration",
	"lexical_declaration":             "VariableDeclaration",
	"statement_block":                 "BlockStatement",
	"array":                           "ArrayExpression",
	"object":                          "ObjectExpression",
	"pair":                            "Property",
	"spread_element":                  "SpreadElement",
	"formal_parameters":               "Params",
	"class":                           "ClassExpression",
	"class_body":                      "ClassBody",
	"method_definition":               "MethodDefinition",
	"field_definition":                "PropertyDefinition",
	"for_in_statement":                "ForInStatement",
	"import_statement":                "ImportDeclaration",
	"export_statement":                "ExportNamedDeclaration",
}

// estreeName maps a tree-sitter node type to an ESTree-style tag. Kinds
// without an explicit entry are converted from snake_case to CamelCase.
func estreeName(kind string) string {
	if name, ok := estreeNames[kind]; ok {
		return name
	}
	var b strings.Builder
	for _, part := range strings.Split(kind, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return kind
	}
	return b.String()
}
