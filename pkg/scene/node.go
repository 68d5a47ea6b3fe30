package scene

import (
	"strings"

	"github.com/google/uuid"
)

// Node is a unit in the hierarchical scene structure. It owns its children
// and its attached capabilities. The parent link is rebuilt after a template
// is unmarshalled and is never serialized.
type Node struct {
	ID           string        `json:"id,omitempty"`
	Name         string        `json:"name"`
	Children     []*Node       `json:"children,omitempty"`
	Capabilities []*Capability `json:"capabilities,omitempty"`

	parent *Node
}

// Parent returns the owning node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Path reports the node's position as slash-joined names from its root.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.Name
	}
	var names []string
	for cur := n; cur != nil; cur = cur.parent {
		names = append(names, cur.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// Walk visits the node and every descendant in a stable pre-order.
// Returning false from the visitor stops the walk.
func (n *Node) Walk(visit func(*Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(visit) {
			return false
		}
	}
	return true
}

// FindByName returns the first node in pre-order (including n itself) whose
// name matches, or nil. When siblings share a name the first match wins.
func (n *Node) FindByName(name string) *Node {
	var found *Node
	n.Walk(func(cur *Node) bool {
		if cur.Name == name {
			found = cur
			return false
		}
		return true
	})
	return found
}

// FindByID returns the node in n's subtree with the given ID, or nil.
func (n *Node) FindByID(id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	n.Walk(func(cur *Node) bool {
		if cur.ID == id {
			found = cur
			return false
		}
		return true
	})
	return found
}

// IsWithin reports whether n is root itself or one of its descendants.
func (n *Node) IsWithin(root *Node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == root {
			return true
		}
	}
	return false
}

// NodesWith returns every node in n's subtree (including n) carrying a
// capability of the given kind, in pre-order.
func (n *Node) NodesWith(kind Kind) []*Node {
	var out []*Node
	n.Walk(func(cur *Node) bool {
		if cur.Capability(kind) != nil {
			out = append(out, cur)
		}
		return true
	})
	return out
}

// Capability returns the node's capability of the given kind, or nil.
// A node is expected to carry at most one capability per kind; when a
// template violates that, the first attached instance wins.
func (n *Node) Capability(kind Kind) *Capability {
	for _, c := range n.Capabilities {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// HasCapability reports whether the node carries a capability of the kind.
func (n *Node) HasCapability(kind Kind) bool {
	return n.Capability(kind) != nil
}

// AttachCapability adds a capability to the node.
func (n *Node) AttachCapability(c *Capability) {
	n.Capabilities = append(n.Capabilities, c)
}

// DetachCapability removes the capability with the given instance ID.
// It returns the removed capability, or nil if the node does not carry it.
func (n *Node) DetachCapability(id string) *Capability {
	for i, c := range n.Capabilities {
		if c.ID == id {
			n.Capabilities = append(n.Capabilities[:i], n.Capabilities[i+1:]...)
			return c
		}
	}
	return nil
}

// AddChild appends a child node and sets its parent link.
func (n *Node) AddChild(child *Node) {
	child.parent = n
	n.Children = append(n.Children, child)
}

// Normalize rebuilds parent links for the whole subtree and assigns IDs to
// nodes and capabilities that lack one. Call after unmarshalling or after
// constructing a tree by struct literal. Safe to call repeatedly.
func (n *Node) Normalize() {
	n.normalize(nil)
}

func (n *Node) normalize(parent *Node) {
	n.parent = parent
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	for _, c := range n.Capabilities {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
	}
	for _, child := range n.Children {
		child.normalize(n)
	}
}

// Clone returns a deep copy of the subtree rooted at n. The copy is a root:
// its parent link is nil and its internal parent links are rebuilt.
func (n *Node) Clone() *Node {
	out := &Node{
		ID:   n.ID,
		Name: n.Name,
	}
	for _, c := range n.Capabilities {
		out.Capabilities = append(out.Capabilities, c.Clone())
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = out
		out.Children = append(out.Children, cc)
	}
	return out
}
