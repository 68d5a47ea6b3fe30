package scene

// Template is the persisted scene asset: a named node hierarchy stored as a
// JSON file. A template is opened into an editable in-memory context,
// mutated by one reconciliation run, and written back atomically as a whole.
type Template struct {
	Name     string `json:"name"`                // display name of the template
	FileName string `json:"file_name,omitempty"` // file the template was loaded from
	Root     *Node  `json:"root"`                // root of the node hierarchy
}

// Normalize rebuilds parent links and fills missing IDs across the whole
// hierarchy. Storage calls this after every load.
func (t *Template) Normalize() {
	if t.Root != nil {
		t.Root.Normalize()
	}
}
