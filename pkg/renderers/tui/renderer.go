package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/render"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// Renderer implements render.Renderer for terminal-driven sessions. It
// prompts for every leaf of the session's schema, storing answers in the
// session, and serialises the collected value.
type Renderer struct {
	driver       PromptDriver
	out          io.Writer
	outputFormat OutputFormat
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer. Without options it prompts on the
// terminal through survey and emits JSON.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{outputFormat: OutputFormatJSON}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render walks the session's controls and prompts for each one. Values
// already present in the session (seeded defaults or earlier answers) are
// offered as prompt defaults. Messages in opts.Errors are shown before the
// prompt of the field they point at.
func (r *Renderer) Render(ctx context.Context, session *form.Session, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if session == nil {
		return nil, errors.New("tui: session is nil")
	}

	root := session.Render()
	mapped := render.MapErrors(root, opts.Errors)
	for _, message := range render.MergeFormErrors(opts.FormErrors, mapped.Form...) {
		_ = r.info(ctx, message)
	}

	p := &prompter{r: r, session: session, errors: mapped.Fields}
	if err := p.control(ctx, root); err != nil {
		return nil, err
	}

	return r.serialize(session.Collect())
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) invalid(ctx context.Context, label string, err error) {
	_ = r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, label, err))
}

type prompter struct {
	r       *Renderer
	session *form.Session
	errors  map[string][]string
}

func (p *prompter) control(ctx context.Context, ctrl form.Control) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, message := range p.errors[ctrl.Pointer()] {
		p.r.invalid(ctx, displayLabel(ctrl), errors.New(message))
	}

	switch ctrl.Kind {
	case form.ControlGroup:
		for _, child := range ctrl.Children {
			if err := p.control(ctx, child); err != nil {
				return err
			}
		}
		return nil
	case form.ControlList:
		return p.list(ctx, ctrl)
	case form.ControlSelect:
		return p.selectOne(ctx, ctrl)
	case form.ControlCheckbox:
		return p.boolean(ctx, ctrl)
	case form.ControlNumber:
		return p.number(ctx, ctrl)
	default:
		return p.text(ctx, ctrl)
	}
}

func (p *prompter) text(ctx context.Context, ctrl form.Control) error {
	label := displayLabel(ctrl)
	for {
		response, err := p.r.driver.Input(ctx, InputConfig{
			Message: promptMessage(p.r.theme, label),
			Default: ctrl.Text(),
			Help:    lengthHelp(ctrl),
		})
		if err != nil {
			return err
		}
		if response != "" {
			if err := validateLength(ctrl, response); err != nil {
				p.r.invalid(ctx, label, err)
				continue
			}
		}
		return p.session.Input(ctrl.Path, response)
	}
}

func (p *prompter) selectOne(ctx context.Context, ctrl form.Control) error {
	label := displayLabel(ctrl)
	options := make([]string, 0, len(ctrl.Options))
	values := make([]string, 0, len(ctrl.Options))
	defaultIdx := -1
	for _, opt := range ctrl.Options {
		if opt.Value == nil {
			continue
		}
		if opt.Selected {
			defaultIdx = len(options)
		}
		options = append(options, opt.Label)
		values = append(values, opt.Text())
	}
	if len(options) == 0 {
		return nil
	}

	for {
		idx, err := p.r.driver.Select(ctx, SelectConfig{
			Message:      promptMessage(p.r.theme, label),
			Options:      options,
			DefaultIndex: defaultIdx,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			p.r.invalid(ctx, label, fmt.Errorf("selection %d out of range", idx))
			continue
		}
		return p.session.Input(ctrl.Path, values[idx])
	}
}

func (p *prompter) boolean(ctx context.Context, ctrl form.Control) error {
	resp, err := p.r.driver.Confirm(ctx, ConfirmConfig{
		Message: promptMessage(p.r.theme, displayLabel(ctrl)),
		Default: ctrl.Checked(),
	})
	if err != nil {
		return err
	}
	return p.session.Set(ctrl.Path, resp)
}

func (p *prompter) number(ctx context.Context, ctrl form.Control) error {
	label := displayLabel(ctrl)
	for {
		input, err := p.r.driver.Input(ctx, InputConfig{
			Message: promptMessage(p.r.theme, label),
			Default: ctrl.Text(),
			Help:    boundsHelp(ctrl),
		})
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if err := p.session.Input(ctrl.Path, input); err != nil {
			if errors.Is(err, form.ErrInvalidInput) {
				p.r.invalid(ctx, label, err)
				continue
			}
			return err
		}
		if input == "" {
			return nil
		}
		value, _ := p.session.Value(ctrl.Path)
		if err := validateBounds(ctrl, value.(float64)); err != nil {
			p.r.invalid(ctx, label, err)
			continue
		}
		return nil
	}
}

// list prompts existing elements first, then offers to add more until the
// user declines or maxItems is reached. Elements below minItems are added
// without asking.
func (p *prompter) list(ctx context.Context, ctrl form.Control) error {
	label := displayLabel(ctrl)
	for _, child := range ctrl.Children {
		if err := p.control(ctx, child); err != nil {
			return err
		}
	}

	for {
		n := p.session.Len(ctrl.Path)
		if ctrl.MaxItems != nil && n >= *ctrl.MaxItems {
			return p.session.SetLen(ctrl.Path, n)
		}
		if ctrl.MinItems == nil || n >= *ctrl.MinItems {
			more, err := p.r.driver.Confirm(ctx, ConfirmConfig{
				Message: promptMessage(p.r.theme, fmt.Sprintf("Add element to %s?", label)),
				Default: false,
			})
			if err != nil {
				return err
			}
			if !more {
				return p.session.SetLen(ctrl.Path, n)
			}
		}

		idx, err := p.session.AddElement(ctrl.Path)
		if err != nil {
			return err
		}
		child, ok := findControl(p.session.Render(), ctrl.Path.Child(schema.Index(idx)))
		if !ok {
			return fmt.Errorf("tui: element %s was not rendered", ctrl.Path.Child(schema.Index(idx)))
		}
		if err := p.control(ctx, child); err != nil {
			return err
		}
	}
}

func findControl(root form.Control, path form.Path) (form.Control, bool) {
	if root.Path.Equal(path) {
		return root, true
	}
	if !path.HasPrefix(root.Path) {
		return form.Control{}, false
	}
	for _, child := range root.Children {
		if found, ok := findControl(child, path); ok {
			return found, true
		}
	}
	return form.Control{}, false
}

func displayLabel(ctrl form.Control) string {
	if ctrl.Label != "" {
		return ctrl.Label
	}
	if ctrl.Name != "" {
		return ctrl.Name
	}
	return "value"
}

// promptMessage prefixes a prompt message with the theme's prompt prefix.
func promptMessage(theme Theme, message string) string {
	return theme.PromptPrefix + message
}

func lengthHelp(ctrl form.Control) string {
	switch {
	case ctrl.MinLength != nil && ctrl.MaxLength != nil:
		return fmt.Sprintf("%d to %d characters", *ctrl.MinLength, *ctrl.MaxLength)
	case ctrl.MinLength != nil:
		return fmt.Sprintf("at least %d characters", *ctrl.MinLength)
	case ctrl.MaxLength != nil:
		return fmt.Sprintf("at most %d characters", *ctrl.MaxLength)
	}
	return ""
}

func boundsHelp(ctrl form.Control) string {
	kind := "number"
	if ctrl.Integer {
		kind = "whole number"
	}
	switch {
	case ctrl.Minimum != nil && ctrl.Maximum != nil:
		return fmt.Sprintf("%s between %v and %v", kind, *ctrl.Minimum, *ctrl.Maximum)
	case ctrl.Minimum != nil:
		return fmt.Sprintf("%s, at least %v", kind, *ctrl.Minimum)
	case ctrl.Maximum != nil:
		return fmt.Sprintf("%s, at most %v", kind, *ctrl.Maximum)
	}
	return kind
}

func validateLength(ctrl form.Control, value string) error {
	n := utf8.RuneCountInString(value)
	if ctrl.MinLength != nil && n < *ctrl.MinLength {
		return fmt.Errorf("must be at least %d characters", *ctrl.MinLength)
	}
	if ctrl.MaxLength != nil && n > *ctrl.MaxLength {
		return fmt.Errorf("must be at most %d characters", *ctrl.MaxLength)
	}
	return nil
}

func validateBounds(ctrl form.Control, value float64) error {
	if ctrl.Minimum != nil && value < *ctrl.Minimum {
		return fmt.Errorf("must be >= %v", *ctrl.Minimum)
	}
	if ctrl.Maximum != nil && value > *ctrl.Maximum {
		return fmt.Errorf("must be <= %v", *ctrl.Maximum)
	}
	return nil
}

func (r *Renderer) serialize(values any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flattenForm(values any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", form.FormatValue(val))
		}
	default:
		out.Set(prefix, form.FormatValue(v))
	}
}

func prettyPrint(values any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, form.FormatValue(v))
		}
	}
}
