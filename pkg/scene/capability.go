package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies the behavior a capability adds to a node.
type Kind string

const (
	// KindGrabbable marks a node as an interaction target.
	KindGrabbable Kind = "grabbable"
	// KindStandardInteractable is the canonical single-hand grab behavior.
	KindStandardInteractable Kind = "standard_interactable"
	// KindTouchInteractable is the alternate grab behavior. It is mutually
	// exclusive with KindStandardInteractable on the same node.
	KindTouchInteractable Kind = "touch_interactable"
	// KindPhysicsJointTransformer moves a grabbed node through temporary
	// joints anchored at a root node.
	KindPhysicsJointTransformer Kind = "physics_joint_transformer"
	// KindPhysicalBody is the physics-simulated body a node may own.
	KindPhysicalBody Kind = "physical_body"
)

// Field names used by the capability kinds above.
const (
	FieldTransformer   = "transformer"    // grabbable -> transformer capability ID
	FieldBody          = "body"           // grabbable -> physical body capability ID
	FieldRoot          = "root"           // transformer -> anchor node ID
	FieldKinematicGrab = "kinematic_grab" // transformer -> snap to hand instead of simulating
)

// ErrFieldMissing is returned when a capability does not declare a field.
// Template files are authored by external tool versions, so a capability may
// arrive with an older shape than the one this tool expects.
var ErrFieldMissing = fmt.Errorf("field not declared on capability")

// defaultFields is the canonical field set for each kind. Capabilities
// created by this tool always carry their full schema; capabilities loaded
// from a template carry whatever the authoring tool wrote.
var defaultFields = map[Kind]map[string]any{
	KindGrabbable: {
		FieldTransformer: "",
		FieldBody:        "",
	},
	KindPhysicsJointTransformer: {
		FieldRoot:          "",
		FieldKinematicGrab: true,
	},
}

// Capability is a typed record of behavior attached to exactly one node.
type Capability struct {
	ID     string         `json:"id"`
	Kind   Kind           `json:"kind"`
	Fields map[string]any `json:"fields,omitempty"`
}

// NewCapability creates a capability of the given kind with its canonical
// field set and a fresh instance ID.
func NewCapability(kind Kind) *Capability {
	c := &Capability{
		ID:   uuid.NewString(),
		Kind: kind,
	}
	if defaults, ok := defaultFields[kind]; ok {
		c.Fields = make(map[string]any, len(defaults))
		for k, v := range defaults {
			c.Fields[k] = v
		}
	}
	return c
}

// Field returns the value of a declared field.
func (c *Capability) Field(name string) (any, bool) {
	if c.Fields == nil {
		return nil, false
	}
	v, ok := c.Fields[name]
	return v, ok
}

// StringField returns a declared field as a string. Reference fields hold
// the ID of the node or capability they point to.
func (c *Capability) StringField(name string) (string, bool) {
	v, ok := c.Field(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// BoolField returns a declared field as a bool.
func (c *Capability) BoolField(name string) (bool, bool) {
	v, ok := c.Field(name)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// SetField writes a declared field. Writing a field the capability does not
// declare returns ErrFieldMissing; the shape of a loaded capability is owned
// by the tool that authored it, not by this one.
func (c *Capability) SetField(name string, value any) error {
	if _, ok := c.Field(name); !ok {
		return fmt.Errorf("%w: %s.%s", ErrFieldMissing, c.Kind, name)
	}
	c.Fields[name] = value
	return nil
}

// Clone returns a deep copy of the capability.
func (c *Capability) Clone() *Capability {
	out := &Capability{
		ID:   c.ID,
		Kind: c.Kind,
	}
	if c.Fields != nil {
		out.Fields = make(map[string]any, len(c.Fields))
		for k, v := range c.Fields {
			out.Fields[k] = v
		}
	}
	return out
}
