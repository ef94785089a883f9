package html

// WalkAction tells Walk how to continue after visiting a node.
type WalkAction int

const (
	WalkContinue     WalkAction = iota
	WalkSkipChildren            // do not descend into the node
	WalkStop
)

// Walk visits n and its descendants in document (pre-)order. The children
// slice is snapshotted per node so fn may detach the node it is visiting.
func (n *Node) Walk(fn func(*Node) WalkAction) {
	n.walk(fn)
}

func (n *Node) walk(fn func(*Node) WalkAction) bool {
	switch fn(n) {
	case WalkStop:
		return false
	case WalkSkipChildren:
		return true
	}
	children := append([]*Node(nil), n.Children...)
	for _, c := range children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// FindFirst returns the first node in document order matching pred.
func (n *Node) FindFirst(pred func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(c *Node) WalkAction {
		if pred(c) {
			found = c
			return WalkStop
		}
		return WalkContinue
	})
	return found
}

// Filter decides whether a node is collected, and whether its subtree is
// visited at all.
type Filter func(*Node) FilterResult

type FilterResult int

const (
	FilterAccept     FilterResult = iota
	FilterSkip                    // not collected, children visited
	FilterReject                  // not collected, children skipped
	FilterAcceptLeaf              // collected, children skipped
)

// Collect returns the nodes of the subtree rooted at n, in document order,
// that the filter accepts. n itself is a candidate.
func (n *Node) Collect(filter Filter) []*Node {
	var out []*Node
	n.Walk(func(c *Node) WalkAction {
		switch filter(c) {
		case FilterAccept:
			out = append(out, c)
		case FilterReject:
			return WalkSkipChildren
		case FilterAcceptLeaf:
			out = append(out, c)
			return WalkSkipChildren
		}
		return WalkContinue
	})
	return out
}

// Elements returns all element nodes below n (n excluded) in document order.
func (n *Node) Elements() []*Node {
	return n.Collect(func(c *Node) FilterResult {
		if c == n || c.Type != ElementNode {
			return FilterSkip
		}
		return FilterAccept
	})
}
