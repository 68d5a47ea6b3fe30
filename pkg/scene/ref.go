package scene

// NodeRef is a two-tier node reference: either an in-context node pointer or
// an external hint carrying only a name. A hint originates outside the loaded
// editable context, e.g. a live scene instance dragged into a reference field
// before the template was opened for editing. A NodeRef is resolved exactly
// once at the start of a run; resolved code only ever sees *Node.
type NodeRef struct {
	node *Node
	name string
}

// RefTo returns an in-context reference to a node.
func RefTo(n *Node) NodeRef {
	return NodeRef{node: n}
}

// RefNamed returns an external hint that resolves by name.
func RefNamed(name string) NodeRef {
	return NodeRef{name: name}
}

// IsZero reports whether the reference carries no hint at all.
func (r NodeRef) IsZero() bool {
	return r.node == nil && r.name == ""
}

// Resolve produces the in-context node a reference stands for, rooted at the
// given subtree:
//
//   - a zero reference resolves to root
//   - a node already within root's subtree resolves to itself
//   - anything else falls back to a name scan of the subtree in pre-order,
//     first match wins
//   - no match resolves to root
//
// The name scan is a best-effort heuristic, not a guaranteed resolution, so
// a miss is silent rather than an error.
func (r NodeRef) Resolve(root *Node) *Node {
	if r.IsZero() {
		return root
	}
	if r.node != nil {
		if r.node.IsWithin(root) {
			return r.node
		}
		if match := root.FindByName(r.node.Name); match != nil {
			return match
		}
		return root
	}
	if match := root.FindByName(r.name); match != nil {
		return match
	}
	return root
}
