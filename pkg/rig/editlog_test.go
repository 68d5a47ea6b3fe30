package rig

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sceneforge/rigkit/pkg/scene"
)

func TestEditLog_RevertUndoesRunAsOneUnit(t *testing.T) {
	root := &scene.Node{Name: "Crate"}
	touch := scene.NewCapability(scene.KindTouchInteractable)
	root.AttachCapability(touch)
	transformer := scene.NewCapability(scene.KindPhysicsJointTransformer)
	root.AttachCapability(transformer)
	root.Normalize()

	log := NewEditLog()
	log.AddCapability(root, scene.NewCapability(scene.KindStandardInteractable))
	log.RemoveCapability(root, touch)
	if err := log.WriteField(root, transformer, scene.FieldRoot, "anchor-1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if log.Len() != 3 {
		t.Fatalf("Expected 3 edits, got %d", log.Len())
	}

	log.Revert(root)

	if root.HasCapability(scene.KindStandardInteractable) {
		t.Error("Expected the added capability to be gone after revert")
	}
	if !root.HasCapability(scene.KindTouchInteractable) {
		t.Error("Expected the removed capability to be restored")
	}
	if v, _ := transformer.StringField(scene.FieldRoot); v != "" {
		t.Errorf("Expected the field write to be undone, got %q", v)
	}
	if log.Len() != 0 {
		t.Errorf("Expected the log to be drained after revert, got %d", log.Len())
	}
}

func TestEditLog_WriteFieldSameValueRecordsNothing(t *testing.T) {
	root := &scene.Node{Name: "Crate"}
	transformer := scene.NewCapability(scene.KindPhysicsJointTransformer)
	root.AttachCapability(transformer)
	root.Normalize()

	log := NewEditLog()
	if err := log.WriteField(root, transformer, scene.FieldRoot, "a"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := log.WriteField(root, transformer, scene.FieldRoot, "a"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if log.Len() != 1 {
		t.Errorf("Expected a same-value write to record nothing, got %d edits", log.Len())
	}
}

func TestEditLog_WriteFieldUndeclared(t *testing.T) {
	root := &scene.Node{Name: "Crate"}
	c := &scene.Capability{ID: "c1", Kind: scene.KindGrabbable, Fields: map[string]any{}}
	root.AttachCapability(c)
	root.Normalize()

	log := NewEditLog()
	err := log.WriteField(root, c, scene.FieldTransformer, "t1")
	if !errors.Is(err, scene.ErrFieldMissing) {
		t.Fatalf("Expected ErrFieldMissing, got %v", err)
	}
	if log.Len() != 0 {
		t.Error("A failed write must not be recorded")
	}
}

func TestEditLog_RemoveUnattachedCapabilityRecordsNothing(t *testing.T) {
	root := &scene.Node{Name: "Crate"}
	root.Normalize()

	log := NewEditLog()
	log.RemoveCapability(root, scene.NewCapability(scene.KindTouchInteractable))
	if log.Len() != 0 {
		t.Errorf("Expected no edit for a capability the node does not carry, got %d", log.Len())
	}
}

func TestEditLog_RevertAfterRehydration(t *testing.T) {
	// A log persisted to the edit-session store and loaded back must still
	// revert a matching hierarchy; edits address nodes by ID, not pointer.
	root := &scene.Node{Name: "Crate"}
	root.Normalize()

	log := NewEditLog()
	log.AddCapability(root, scene.NewCapability(scene.KindStandardInteractable))

	data, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("Failed to marshal edit log: %v", err)
	}
	var loaded EditLog
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to unmarshal edit log: %v", err)
	}
	if loaded.RunID != log.RunID {
		t.Errorf("Expected run ID to survive persistence")
	}

	loaded.Revert(root)
	if root.HasCapability(scene.KindStandardInteractable) {
		t.Error("Expected the rehydrated log to undo the add")
	}
}

func TestEditLog_RevertToleratesMissingFieldBag(t *testing.T) {
	// omitempty drops an empty field bag from the serialized asset, so a
	// reloaded capability may carry nil Fields. Reverting a field write
	// against it is a best-effort skip, not a panic.
	root := &scene.Node{Name: "Crate"}
	transformer := scene.NewCapability(scene.KindPhysicsJointTransformer)
	root.AttachCapability(transformer)
	root.Normalize()

	log := NewEditLog()
	if err := log.WriteField(root, transformer, scene.FieldRoot, "anchor-1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	transformer.Fields = nil
	log.Revert(root)

	if transformer.Fields != nil {
		t.Error("Expected the skipped revert to leave the field bag alone")
	}
	if log.Len() != 0 {
		t.Errorf("Expected the log to be drained after revert, got %d", log.Len())
	}
}

func TestEditLog_Baseline(t *testing.T) {
	root := &scene.Node{Name: "Crate"}
	root.Normalize()

	log := NewEditLog()
	log.SetBaseline(root)

	root.Name = "Mutated"
	if log.Baseline.Name != "Crate" {
		t.Error("Expected the baseline to be a snapshot, not a live reference")
	}
}
