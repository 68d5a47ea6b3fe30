package rig

import (
	"errors"

	"github.com/sceneforge/rigkit/pkg/scene"
)

// Build derives grab rigs from physics-bearing nodes: every node in the
// subtree carrying a physical body is given the full interactable
// configuration. Unlike Fix, the transformer's kinematic grab switch is
// turned off, because derived rig nodes (e.g. ragdoll limbs) are driven by
// simulated physics rather than snapped to the manipulating hand.
//
// Build mutates the live hierarchy it is given and persists nothing; the
// caller decides whether and when to write. It assumes an external physics
// rig step has already populated bodies and never creates one. A subtree
// with no bodies is a warning, not an error.
func (r *Reconciler) Build(root *scene.Node, parent scene.NodeRef) (*Report, *EditLog, error) {
	if root == nil {
		return nil, nil, errors.New("root node is required")
	}

	log := NewEditLog()
	report := &Report{RunID: log.RunID}

	proxy := parent.Resolve(root)

	targets := root.NodesWith(scene.KindPhysicalBody)
	if len(targets) == 0 {
		report.warnf("subtree %s has no physical bodies; nothing to build", root.Path())
		r.logger.Warn("Nothing to build", "root", root.Path())
		return report, log, nil
	}

	for _, n := range targets {
		body := n.Capability(scene.KindPhysicalBody)

		grab := n.Capability(scene.KindGrabbable)
		if grab == nil {
			grab = scene.NewCapability(scene.KindGrabbable)
			log.AddCapability(n, grab)
			report.logf("added %s to %s", scene.KindGrabbable, n.Path())
		}

		if !n.HasCapability(scene.KindStandardInteractable) {
			log.AddCapability(n, scene.NewCapability(scene.KindStandardInteractable))
			report.logf("added %s to %s", scene.KindStandardInteractable, n.Path())
		}

		transformer := n.Capability(scene.KindPhysicsJointTransformer)
		if transformer == nil {
			transformer = scene.NewCapability(scene.KindPhysicsJointTransformer)
			log.AddCapability(n, transformer)
			report.logf("added %s to %s", scene.KindPhysicsJointTransformer, n.Path())
		}

		if err := writeBuildFields(log, n, grab, transformer, body, proxy, report); err != nil {
			r.logger.Error("Skipping malformed node", "node", n.Path(), "error", err)
			continue
		}

		report.Processed++
		report.logf("configured %s", n.Path())
	}

	r.logger.Info("Build pass complete",
		"root", root.Path(),
		"processed", report.Processed,
		"errors", len(report.Errors))
	return report, log, nil
}

func writeBuildFields(log *EditLog, n *scene.Node, grab, transformer, body *scene.Capability, proxy *scene.Node, report *Report) error {
	writes := []struct {
		cap   *scene.Capability
		field string
		value any
	}{
		{grab, scene.FieldBody, body.ID},
		{transformer, scene.FieldRoot, proxy.ID},
		{transformer, scene.FieldKinematicGrab, false},
		{grab, scene.FieldTransformer, transformer.ID},
	}
	for _, w := range writes {
		if err := log.WriteField(n, w.cap, w.field, w.value); err != nil {
			report.Errors = append(report.Errors, NodeError{
				NodePath:   n.Path(),
				Capability: string(w.cap.Kind),
				Field:      w.field,
				Message:    "field not declared; capability shape is out of date",
			})
			return err
		}
	}
	return nil
}
