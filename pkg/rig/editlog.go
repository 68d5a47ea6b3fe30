package rig

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/sceneforge/rigkit/pkg/scene"
)

// EditKind labels a structural edit.
type EditKind string

const (
	EditAddCapability    EditKind = "add_capability"
	EditRemoveCapability EditKind = "remove_capability"
	EditFieldWrite       EditKind = "field_write"
)

// Edit is one structural change made during a reconciliation run. Nodes are
// addressed by ID so an edit can be replayed against a rehydrated hierarchy,
// not just the live one it was recorded on.
type Edit struct {
	Kind       EditKind          `json:"kind"`
	NodeID     string            `json:"node_id"`
	NodePath   string            `json:"node_path"` // for reporting only
	Capability *scene.Capability `json:"capability,omitempty"`
	Field      string            `json:"field,omitempty"`
	Previous   any               `json:"previous,omitempty"`
	Value      any               `json:"value,omitempty"`
}

// EditLog records every structural edit of one reconciliation run so the
// whole run can be undone as a single unit. All mutations the reconciler
// makes go through the log; nothing edits the hierarchy behind its back.
type EditLog struct {
	RunID    string      `json:"run_id"`
	Baseline *scene.Node `json:"baseline,omitempty"`
	Edits    []Edit      `json:"edits"`
}

// NewEditLog creates an empty log with a fresh run ID.
func NewEditLog() *EditLog {
	return &EditLog{RunID: uuid.NewString()}
}

// SetBaseline stores a deep copy of the hierarchy as the undo baseline.
func (l *EditLog) SetBaseline(root *scene.Node) {
	l.Baseline = root.Clone()
}

// Len returns the number of recorded edits.
func (l *EditLog) Len() int {
	return len(l.Edits)
}

// AddCapability attaches a capability to a node and records the edit.
func (l *EditLog) AddCapability(n *scene.Node, c *scene.Capability) {
	n.AttachCapability(c)
	l.Edits = append(l.Edits, Edit{
		Kind:       EditAddCapability,
		NodeID:     n.ID,
		NodePath:   n.Path(),
		Capability: c.Clone(),
	})
}

// RemoveCapability detaches a capability from a node and records the edit
// with a snapshot so the removal can be undone.
func (l *EditLog) RemoveCapability(n *scene.Node, c *scene.Capability) {
	removed := n.DetachCapability(c.ID)
	if removed == nil {
		return
	}
	l.Edits = append(l.Edits, Edit{
		Kind:       EditRemoveCapability,
		NodeID:     n.ID,
		NodePath:   n.Path(),
		Capability: removed.Clone(),
	})
}

// WriteField writes a declared capability field and records the edit.
// Writing a value the field already holds records nothing, which keeps a
// re-run of the same reconciliation free of spurious edits. Writing an
// undeclared field returns scene.ErrFieldMissing unrecorded.
func (l *EditLog) WriteField(n *scene.Node, c *scene.Capability, field string, value any) error {
	prev, ok := c.Field(field)
	if !ok {
		return fmt.Errorf("%w: %s.%s on node %s", scene.ErrFieldMissing, c.Kind, field, n.Path())
	}
	if reflect.DeepEqual(prev, value) {
		return nil
	}
	if err := c.SetField(field, value); err != nil {
		return err
	}
	l.Edits = append(l.Edits, Edit{
		Kind:     EditFieldWrite,
		NodeID:   n.ID,
		NodePath: n.Path(),
		Field:    field,
		Previous: prev,
		Value:    value,
		Capability: &scene.Capability{
			ID:   c.ID,
			Kind: c.Kind,
		},
	})
	return nil
}

// Revert undoes every recorded edit against the given hierarchy, newest
// first. Edits whose node, capability, or field bag no longer exists are
// skipped; the log describes one run against one hierarchy, and a caller
// reverting a different one gets best-effort behavior.
func (l *EditLog) Revert(root *scene.Node) {
	for i := len(l.Edits) - 1; i >= 0; i-- {
		e := l.Edits[i]
		n := root.FindByID(e.NodeID)
		if n == nil {
			continue
		}
		switch e.Kind {
		case EditAddCapability:
			n.DetachCapability(e.Capability.ID)
		case EditRemoveCapability:
			n.AttachCapability(e.Capability.Clone())
		case EditFieldWrite:
			for _, c := range n.Capabilities {
				if c.ID == e.Capability.ID {
					if c.Fields != nil {
						c.Fields[e.Field] = e.Previous
					}
					break
				}
			}
		}
	}
	l.Edits = nil
}
