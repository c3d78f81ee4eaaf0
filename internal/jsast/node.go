// Package jsast is the closed syntax model the short-circuit detector works on.
//
// A parser adapter (internal/jsparse) converts its own tree into these nodes.
// Only the node kinds the detector classifies get a dedicated type; every other
// kind becomes a Generic node that still carries its children, so a walk over
// the model reaches everything the parser produced.
package jsast

// Node type tags the detector dispatches on. They follow ESTree naming.
const (
	TypeLogical = "LogicalExpression"
	TypeCall    = "CallExpression"
	TypeBinary  = "BinaryExpression"
)

// Node is one element of a parsed JavaScript syntax tree.
// The set of implementations is closed: *LogicalExpression, *CallExpression,
// *BinaryExpression and *Generic.
type Node interface {
	// Type returns the ESTree-style tag of the node.
	Type() string
	// Range returns the node location; ok is false when the parser did not attach one.
	Range() (r Range, ok bool)

	node()
}

// LogicalExpression is `Left Operator Right` with a short-circuiting operator (&&, ||, ??).
type LogicalExpression struct {
	Operator string
	Left     Node
	Right    Node
	Loc      *Range
}

// BinaryExpression is any non-short-circuiting binary operator, comparisons included.
type BinaryExpression struct {
	Operator string
	Left     Node
	Right    Node
	Loc      *Range
}

// CallExpression is `Callee(Arguments...)`.
type CallExpression struct {
	Callee    Node
	Arguments []Node
	Loc       *Range
}

// Generic covers every other node kind. Children keep source order.
type Generic struct {
	Kind     string
	Children []Node
	Loc      *Range
}

func (*LogicalExpression) node() {}
func (*BinaryExpression) node()  {}
func (*CallExpression) node()    {}
func (*Generic) node()           {}

func (*LogicalExpression) Type() string { return TypeLogical }
func (*BinaryExpression) Type() string  { return TypeBinary }
func (*CallExpression) Type() string    { return TypeCall }

func (n *Generic) Type() string {
	if n == nil || n.Kind == "" {
		return "Unknown"
	}
	return n.Kind
}

func (n *LogicalExpression) Range() (Range, bool) {
	if n == nil {
		return Range{}, false
	}
	return deref(n.Loc)
}

func (n *BinaryExpression) Range() (Range, bool) {
	if n == nil {
		return Range{}, false
	}
	return deref(n.Loc)
}

func (n *CallExpression) Range() (Range, bool) {
	if n == nil {
		return Range{}, false
	}
	return deref(n.Loc)
}

func (n *Generic) Range() (Range, bool) {
	if n == nil {
		return Range{}, false
	}
	return deref(n.Loc)
}

func deref(r *Range) (Range, bool) {
	if r == nil {
		return Range{}, false
	}
	return *r, true
}

// IsNil reports whether n is nil or a typed nil pointer.
func IsNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *LogicalExpression:
		return v == nil
	case *BinaryExpression:
		return v == nil
	case *CallExpression:
		return v == nil
	case *Generic:
		return v == nil
	}
	return false
}
