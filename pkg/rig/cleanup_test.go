package rig

import (
	"testing"

	"github.com/sceneforge/rigkit/pkg/scene"
)

func TestCleanSubtree(t *testing.T) {
	tests := []struct {
		name           string
		descendantCaps []scene.Kind
		expectRemoved  bool
	}{
		{
			name:           "interactable on passive child is removed",
			descendantCaps: []scene.Kind{scene.KindStandardInteractable},
			expectRemoved:  true,
		},
		{
			name:           "touch interactable on passive child is removed",
			descendantCaps: []scene.Kind{scene.KindTouchInteractable},
			expectRemoved:  true,
		},
		{
			name:           "nested rig root is preserved",
			descendantCaps: []scene.Kind{scene.KindGrabbable, scene.KindStandardInteractable},
			expectRemoved:  false,
		},
		{
			name:           "unrelated capability is untouched",
			descendantCaps: []scene.Kind{scene.KindPhysicalBody},
			expectRemoved:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &scene.Node{Name: "Target"}
			target.AttachCapability(scene.NewCapability(scene.KindGrabbable))
			child := &scene.Node{Name: "Child"}
			for _, kind := range tt.descendantCaps {
				child.AttachCapability(scene.NewCapability(kind))
			}
			target.AddChild(child)
			target.Normalize()

			log := NewEditLog()
			report := &Report{}
			cleanSubtree(log, target, report)

			for _, kind := range tt.descendantCaps {
				isInteractable := kind == scene.KindStandardInteractable || kind == scene.KindTouchInteractable
				has := child.HasCapability(kind)
				if tt.expectRemoved && isInteractable && has {
					t.Errorf("Expected %s to be removed from the child", kind)
				}
				if !tt.expectRemoved && !has {
					t.Errorf("Expected %s to be preserved on the child", kind)
				}
			}

			if tt.expectRemoved && log.Len() == 0 {
				t.Error("Expected removals to be recorded in the edit log")
			}
			if !tt.expectRemoved && log.Len() != 0 {
				t.Errorf("Expected no edits, got %d", log.Len())
			}
		})
	}
}

func TestCleanSubtree_TargetItselfExcluded(t *testing.T) {
	target := &scene.Node{Name: "Target"}
	target.AttachCapability(scene.NewCapability(scene.KindStandardInteractable))
	target.Normalize()

	log := NewEditLog()
	cleanSubtree(log, target, &Report{})

	if !target.HasCapability(scene.KindStandardInteractable) {
		t.Error("Cleanup must never touch the target node itself")
	}
}

func TestCleanSubtree_PreservedCapabilityUnchanged(t *testing.T) {
	target := &scene.Node{Name: "Target"}
	target.AttachCapability(scene.NewCapability(scene.KindGrabbable))

	limb := &scene.Node{Name: "Limb"}
	limb.AttachCapability(scene.NewCapability(scene.KindGrabbable))
	interactable := scene.NewCapability(scene.KindStandardInteractable)
	limb.AttachCapability(interactable)
	target.AddChild(limb)
	target.Normalize()

	cleanSubtree(NewEditLog(), target, &Report{})

	kept := limb.Capability(scene.KindStandardInteractable)
	if kept != interactable {
		t.Error("Expected the exact capability instance to survive, untouched")
	}
}
