package render

// RenderOptions carry per-request data that shapes the output without
// touching the session.
type RenderOptions struct {
	// Action is the URL the rendered form posts to.
	Action string
	// Method defaults to POST.
	Method string
	// Title overrides the heading; the schema root title is used otherwise.
	Title string
	// SubmitLabel overrides the submit button text.
	SubmitLabel string
	// Hidden fields are emitted verbatim before the generated controls.
	Hidden []HiddenField
	// Errors are validation messages keyed by field pointer ("/lines/0/sku").
	// Use MapErrors to fold unknown pointers into form level messages.
	Errors map[string][]string
	// FormErrors are shown above the form.
	FormErrors []string
}
