package rig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sceneforge/rigkit/pkg/scene"
)

// TemplateStore is the slice of the storage collaborator the reconciler
// needs: open a template into an editable context and write it back whole.
type TemplateStore interface {
	GetTemplate(ctx context.Context, filename string) (*scene.Template, error)
	SaveTemplate(ctx context.Context, t *scene.Template) error
}

// Reconciler brings grabbable nodes of a scene template into the canonical
// interactable configuration. Both passes are idempotent: every ensure-step
// is existence-checked and every remove-step targets only capabilities whose
// presence violates a placement rule, so a second run over the same input
// records no edits.
type Reconciler struct {
	store  TemplateStore
	logger *slog.Logger
}

// New creates a Reconciler backed by the given template store.
func New(store TemplateStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logger,
	}
}

// Fix loads a template, reconciles every node carrying a grabbable
// capability, and persists the template back to its storage location. The
// parent reference is resolved against the template root before any node is
// touched. A template without a root node is a hard error before any
// processing; one with no grabbable nodes is reported as a warning and
// left unwritten. Per-node schema mismatches are collected in the report and
// never abort sibling processing.
//
// The returned edit log covers the whole run, baseline included, so the
// surrounding workflow can undo the run as one unit.
func (r *Reconciler) Fix(ctx context.Context, templateFile string, parent scene.NodeRef) (*Report, *EditLog, error) {
	if templateFile == "" {
		return nil, nil, errors.New("template file is required")
	}

	tpl, err := r.store.GetTemplate(ctx, templateFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open template: %w", err)
	}
	if tpl.Root == nil {
		return nil, nil, fmt.Errorf("template %s has no root node", templateFile)
	}

	log := NewEditLog()
	log.SetBaseline(tpl.Root)

	report := &Report{
		RunID:    log.RunID,
		Template: tpl.FileName,
	}

	proxy := parent.Resolve(tpl.Root)
	r.logger.Debug("Resolved proxy parent", "template", tpl.FileName, "parent", proxy.Path())

	targets := tpl.Root.NodesWith(scene.KindGrabbable)
	if len(targets) == 0 {
		report.warnf("template %s has no grabbable nodes; nothing to fix", tpl.FileName)
		r.logger.Warn("Nothing to fix", "template", tpl.FileName)
		return report, log, nil
	}

	for _, n := range targets {
		cleanSubtree(log, n, report)

		if touch := n.Capability(scene.KindTouchInteractable); touch != nil {
			log.RemoveCapability(n, touch)
			report.logf("removed conflicting %s from %s", scene.KindTouchInteractable, n.Path())
		}

		if !n.HasCapability(scene.KindStandardInteractable) {
			log.AddCapability(n, scene.NewCapability(scene.KindStandardInteractable))
			report.logf("added %s to %s", scene.KindStandardInteractable, n.Path())
		}
		removeDuplicates(log, n, scene.KindStandardInteractable, report)

		transformer := n.Capability(scene.KindPhysicsJointTransformer)
		if transformer == nil {
			transformer = scene.NewCapability(scene.KindPhysicsJointTransformer)
			log.AddCapability(n, transformer)
			report.logf("added %s to %s", scene.KindPhysicsJointTransformer, n.Path())
		}
		removeDuplicates(log, n, scene.KindPhysicsJointTransformer, report)

		if err := wireTarget(log, n, transformer, proxy, report); err != nil {
			// Node-local failure: the rest of the targets are independent.
			r.logger.Error("Skipping malformed node", "node", n.Path(), "error", err)
			continue
		}

		report.Processed++
		report.logf("reconciled %s", n.Path())
	}

	if err := r.store.SaveTemplate(ctx, tpl); err != nil {
		return report, log, fmt.Errorf("failed to persist template: %w", err)
	}
	report.Persisted = true

	r.logger.Info("Fix pass complete",
		"template", tpl.FileName,
		"processed", report.Processed,
		"errors", len(report.Errors),
		"edits", log.Len())
	return report, log, nil
}

// wireTarget sets the transformer's anchor and links the grabbable to the
// transformer instance on the same node. A missing reflective field means
// the capability was authored by a different tool version; the mismatch is
// recorded and the node is skipped.
func wireTarget(log *EditLog, n *scene.Node, transformer *scene.Capability, proxy *scene.Node, report *Report) error {
	if err := log.WriteField(n, transformer, scene.FieldRoot, proxy.ID); err != nil {
		report.Errors = append(report.Errors, NodeError{
			NodePath:   n.Path(),
			Capability: string(transformer.Kind),
			Field:      scene.FieldRoot,
			Message:    "field not declared; capability shape is out of date",
		})
		return err
	}

	grab := n.Capability(scene.KindGrabbable)
	if err := log.WriteField(n, grab, scene.FieldTransformer, transformer.ID); err != nil {
		report.Errors = append(report.Errors, NodeError{
			NodePath:   n.Path(),
			Capability: string(grab.Kind),
			Field:      scene.FieldTransformer,
			Message:    "field not declared; capability shape is out of date",
		})
		return err
	}
	return nil
}

// removeDuplicates drops extra capability instances of a kind beyond the
// first attached one. The graph does not enforce one-per-kind structurally,
// so the reconciler does.
func removeDuplicates(log *EditLog, n *scene.Node, kind scene.Kind, report *Report) {
	first := false
	var extras []*scene.Capability
	for _, c := range n.Capabilities {
		if c.Kind != kind {
			continue
		}
		if !first {
			first = true
			continue
		}
		extras = append(extras, c)
	}
	for _, c := range extras {
		log.RemoveCapability(n, c)
		report.logf("removed duplicate %s from %s", kind, n.Path())
	}
}
