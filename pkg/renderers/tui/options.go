package tui

import "io"

// OutputFormat selects how Render serialises the collected message value.
type OutputFormat string

const (
	// OutputFormatJSON emits the message as compact JSON, ready to publish.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded flattens the message into pointer-named
	// form fields, matching what the HTML form would submit.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits one "pointer: value" line per leaf.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme holds message prefixes. Empty prefixes print messages as is.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPromptDriver replaces the terminal driver. A nil driver is ignored.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sends notices of the default driver to w instead of stdout.
// It has no effect together with WithPromptDriver.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		r.out = w
	}
}

// WithOutputFormat selects the serialisation of the collected value.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme sets the message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
