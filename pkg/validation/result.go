package validation

// Issue is one validation failure with optional location metadata. Path is
// a JSON pointer; Field is the dotted form ("lines[0].sku").
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures a validation outcome.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors groups issue messages by pointer, the shape renderers accept for
// field errors. Issues without a path are keyed by "".
func (r Result) Errors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Path] = append(out[issue.Path], issue.Message)
	}
	return out
}
