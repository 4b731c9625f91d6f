package domain

// Filter decides whether a built node is selected for execution
type Filter interface {
	Pass(n Node) bool
}

// Walk visits n and its descendants in tree order. Returning false from fn
// skips the children of the visited node.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if s, ok := n.(*Suite); ok {
		for _, child := range s.children {
			Walk(child, fn)
		}
	}
}

// Leaves returns the test cases below root in tree order
func Leaves(root Node) []*TestCase {
	var leaves []*TestCase
	Walk(root, func(n Node) bool {
		if tc, ok := n.(*TestCase); ok {
			leaves = append(leaves, tc)
		}
		return true
	})
	return leaves
}

// SelectLeaves returns the test cases below root that pass filter. A nil
// filter selects everything.
func SelectLeaves(root Node, filter Filter) []*TestCase {
	leaves := Leaves(root)
	if filter == nil {
		return leaves
	}
	selected := leaves[:0]
	for _, leaf := range leaves {
		if filter.Pass(leaf) {
			selected = append(selected, leaf)
		}
	}
	return selected
}

// Find returns the node with the given id
func Find(root Node, id string) Node {
	var found Node
	Walk(root, func(n Node) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Ancestors returns the suites above n, nearest first
func Ancestors(n Node) []*Suite {
	var suites []*Suite
	for p := n.Parent(); p != nil; p = p.parent {
		suites = append(suites, p)
	}
	return suites
}
