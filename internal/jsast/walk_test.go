package jsast

import (
	"reflect"
	"testing"
)

func ident(name string) *Generic {
	return &Generic{Kind: "Identifier:" + name}
}

func TestWalkPreOrder(t *testing.T) {
	// a && foo(b) || c + 1
	tree := &Generic{
		Kind: "Program",
		Children: []Node{
			&Generic{
				Kind: "ExpressionStatement",
				Children: []Node{
					&LogicalExpression{
						Operator: "||",
						Left: &LogicalExpression{
							Operator: "&&",
							Left:     ident("a"),
							Right: &CallExpression{
								Callee:    ident("foo"),
								Arguments: []Node{ident("b")},
							},
						},
						Right: &BinaryExpression{
							Operator: "+",
							Left:     ident("c"),
							Right:    &Generic{Kind: "Literal"},
						},
					},
				},
			},
		},
	}

	var got []string
	Walk(tree, func(n Node) { got = append(got, n.Type()) })

	want := []string{
		"Program",
		"ExpressionStatement",
		TypeLogical,
		TypeLogical,
		"Identifier:a",
		TypeCall,
		"Identifier:foo",
		"Identifier:b",
		TypeBinary,
		"Identifier:c",
		"Literal",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected visit order:\nwant %v\ngot  %v", want, got)
	}
	if c := Count(tree); c != len(want) {
		t.Errorf("Count() = %d, want %d", c, len(want))
	}
}

func TestWalkSkipsNilSlots(t *testing.T) {
	var nilCall *CallExpression
	tree := &LogicalExpression{
		Operator: "&&",
		Left:     nil,
		Right:    nilCall,
	}

	visited := 0
	Walk(tree, func(Node) { visited++ })
	if visited != 1 {
		t.Fatalf("expected only the root to be visited, got %d visits", visited)
	}

	Walk(nil, func(Node) { t.Fatal("visit called for nil root") })
	Walk(nilCall, func(Node) { t.Fatal("visit called for typed nil root") })
}

func TestWalkDoesNotMutate(t *testing.T) {
	loc := &Range{StartOffset: 0, EndOffset: 6}
	call := &CallExpression{Callee: ident("f"), Loc: loc}
	before := *call

	Walk(call, func(Node) {})

	if !reflect.DeepEqual(before, *call) {
		t.Fatal("Walk mutated the tree")
	}
}

func TestChildren(t *testing.T) {
	callee := ident("f")
	a1, a2 := ident("x"), ident("y")
	call := &CallExpression{Callee: callee, Arguments: []Node{a1, nil, a2}}

	got := Children(call)
	want := []Node{callee, a1, a2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Children() = %v, want %v", got, want)
	}
	if Children(nil) != nil {
		t.Error("Children(nil) should be nil")
	}
}

func TestRange(t *testing.T) {
	r := Range{StartOffset: 5, EndOffset: 10}
	text := "a && foo()"

	if !r.Valid(len(text)) {
		t.Fatal("expected range to be valid")
	}
	if s, ok := r.Slice(text); !ok || s != "foo()" {
		t.Fatalf("Slice() = %q, %v", s, ok)
	}
	if r.Valid(9) {
		t.Error("range past the end of text must be invalid")
	}
	if (Range{StartOffset: 4, EndOffset: 2}).Valid(10) {
		t.Error("inverted range must be invalid")
	}
	if _, ok := (&Generic{}).Range(); ok {
		t.Error("node without Loc must report no range")
	}
	var nilGeneric *Generic
	if nilGeneric.Type() != "Unknown" {
		t.Errorf("nil Generic type = %q", nilGeneric.Type())
	}
}
