package jsast

// Walk calls visit for root and then for every node reachable from it,
// depth-first and parent before children. Children are visited in the order
// of their slots: Left then Right, Callee then Arguments, Generic children in
// source order. nil slots are skipped.
//
// There is no cycle detection and no way to stop early; visit records
// results as a side effect.
func Walk(root Node, visit func(Node)) {
	if visit == nil || IsNil(root) {
		return
	}
	visit(root)

	switch n := root.(type) {
	case *LogicalExpression:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *BinaryExpression:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *CallExpression:
		Walk(n.Callee, visit)
		for _, arg := range n.Arguments {
			Walk(arg, visit)
		}
	case *Generic:
		for _, child := range n.Children {
			Walk(child, visit)
		}
	}
}

// Children returns the declared child slots of n in walk order, skipping nil slots.
func Children(n Node) []Node {
	if IsNil(n) {
		return nil
	}
	var out []Node
	add := func(c Node) {
		if !IsNil(c) {
			out = append(out, c)
		}
	}
	switch v := n.(type) {
	case *LogicalExpression:
		add(v.Left)
		add(v.Right)
	case *BinaryExpression:
		add(v.Left)
		add(v.Right)
	case *CallExpression:
		add(v.Callee)
		for _, arg := range v.Arguments {
			add(arg)
		}
	case *Generic:
		for _, c := range v.Children {
			add(c)
		}
	}
	return out
}

// Count returns the number of nodes Walk would visit.
func Count(root Node) int {
	n := 0
	Walk(root, func(Node) { n++ })
	return n
}
