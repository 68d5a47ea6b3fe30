package rig

import (
	"fmt"
	"strings"
)

// NodeError describes a per-node failure that did not abort the run.
// Grab rigs are independent per node, so a malformed node is reported and
// skipped while its siblings are still processed.
type NodeError struct {
	NodePath   string `json:"node_path"`
	Capability string `json:"capability"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

func (e NodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s.%s: %s", e.NodePath, e.Capability, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.NodePath, e.Capability, e.Message)
}

// Report is the human-readable outcome of one reconciliation run.
type Report struct {
	RunID     string      `json:"run_id"`
	Template  string      `json:"template,omitempty"`  // file the run operated on
	Processed int         `json:"processed"`           // nodes brought into canonical configuration
	Lines     []string    `json:"lines,omitempty"`     // per-node processing log
	Warnings  []string    `json:"warnings,omitempty"`  // non-fatal run-level conditions
	Errors    []NodeError `json:"errors,omitempty"`    // per-node schema mismatches
	Persisted bool        `json:"persisted"`           // whether the template was written back
}

func (r *Report) logf(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Summary renders the report as plain text for consoles and logs.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, line := range r.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, w := range r.Warnings {
		b.WriteString("warning: ")
		b.WriteString(w)
		b.WriteString("\n")
	}
	for _, e := range r.Errors {
		b.WriteString("error: ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d node(s) reconciled\n", r.Processed)
	return b.String()
}
