package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sceneforge/rigkit/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <template.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &TemplateValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	for _, w := range validator.warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Println("Template file is valid!")
}

type TemplateValidator struct {
	errors   []string
	warnings []string
}

func (v *TemplateValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("template file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidTemplateFilename(nameWithoutExt) {
		return fmt.Errorf("template filename '%s' must be lowercase snake_case (e.g., my_template.json, not my-template.json or MyTemplate.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	v.warnings = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var t scene.Template
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&t); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateTemplate(&t, filename)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *TemplateValidator) validateTemplate(t *scene.Template, filename string) {
	if t.Name == "" {
		v.errors = append(v.errors, "template name is required")
	}
	if t.Root == nil {
		v.errors = append(v.errors, "template root node is required")
		return
	}
	t.Normalize()

	t.Root.Walk(func(n *scene.Node) bool {
		v.validateNode(n)
		return true
	})
}

func (v *TemplateValidator) validateNode(n *scene.Node) {
	if n.Name == "" {
		v.errors = append(v.errors, fmt.Sprintf("node %s has no name", n.Path()))
	}

	// One capability instance per kind is the expected invariant.
	seen := make(map[scene.Kind]int)
	for _, c := range n.Capabilities {
		seen[c.Kind]++
	}
	for kind, count := range seen {
		if count > 1 {
			v.errors = append(v.errors, fmt.Sprintf("node %s carries %d instances of %s; a fix pass will remove the extras", n.Path(), count, kind))
		}
	}

	// The two single-hand interactables are mutually exclusive.
	if seen[scene.KindStandardInteractable] > 0 && seen[scene.KindTouchInteractable] > 0 {
		v.errors = append(v.errors, fmt.Sprintf("node %s carries both %s and %s", n.Path(), scene.KindStandardInteractable, scene.KindTouchInteractable))
	}

	v.validateGrabWiring(n)
	v.validateSiblingNames(n)
}

func (v *TemplateValidator) validateGrabWiring(n *scene.Node) {
	grab := n.Capability(scene.KindGrabbable)
	if grab == nil {
		// An interactable without a grabbable on a non-root node is the
		// misplaced-capability shape the fix pass cleans up.
		if n.Parent() != nil && (n.HasCapability(scene.KindStandardInteractable) || n.HasCapability(scene.KindTouchInteractable)) {
			v.warnings = append(v.warnings, fmt.Sprintf("node %s carries an interactable without a grabbable; a fix pass may remove it", n.Path()))
		}
		return
	}

	transformer := n.Capability(scene.KindPhysicsJointTransformer)
	if transformer == nil {
		v.warnings = append(v.warnings, fmt.Sprintf("grabbable node %s has no transformer; run a fix pass", n.Path()))
		return
	}

	ref, ok := grab.StringField(scene.FieldTransformer)
	if !ok {
		v.errors = append(v.errors, fmt.Sprintf("grabbable on node %s does not declare the %s field", n.Path(), scene.FieldTransformer))
		return
	}
	if ref == "" {
		v.warnings = append(v.warnings, fmt.Sprintf("grabbable node %s is not wired to its transformer; run a fix pass", n.Path()))
	} else if ref != transformer.ID {
		v.errors = append(v.errors, fmt.Sprintf("grabbable on node %s references transformer %q but the node carries %q", n.Path(), ref, transformer.ID))
	}
}

func (v *TemplateValidator) validateSiblingNames(n *scene.Node) {
	names := make(map[string]int)
	for _, child := range n.Children {
		names[child.Name]++
	}
	for name, count := range names {
		if count > 1 {
			v.warnings = append(v.warnings, fmt.Sprintf("node %s has %d children named %q; name-based references resolve to the first in order", n.Path(), count, name))
		}
	}
}

func isValidTemplateFilename(name string) bool {
	matched, _ := regexp.MatchString(`^[a-z0-9]+(_[a-z0-9]+)*$`, name)
	return matched
}
