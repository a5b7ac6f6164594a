package form

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/interchange"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// ControlKind names the widget a renderer should draw for a node.
type ControlKind string

const (
	ControlText     ControlKind = "text"
	ControlSelect   ControlKind = "select"
	ControlNumber   ControlKind = "number"
	ControlCheckbox ControlKind = "checkbox"
	ControlGroup    ControlKind = "group"
	ControlList     ControlKind = "list"
)

// Control is the render view model for one schema node at one value path.
// Groups carry their properties in declaration order; lists carry one child
// per current element.
type Control struct {
	Kind  ControlKind
	Path  Path
	Name  string
	Label string
	Node  schema.Node

	Value    any
	HasValue bool
	Nullable bool
	Required bool
	Options  []Option

	Integer   bool
	Minimum   *float64
	Maximum   *float64
	MinLength *int
	MaxLength *int
	MinItems  *int
	MaxItems  *int

	Children []Control
	// Error describes a default that could not be decoded. The control is
	// still rendered, unseeded.
	Error string
}

// Pointer returns the control's field pointer, used as the HTML input name.
func (c Control) Pointer() string {
	return c.Path.Pointer()
}

// Text returns the value formatted for a text or number input.
func (c Control) Text() string {
	if !c.HasValue {
		return ""
	}
	return FormatValue(c.Value)
}

// Checked reports whether a checkbox control is on.
func (c Control) Checked() bool {
	b, _ := c.Value.(bool)
	return b
}

// Len returns the number of list elements.
func (c Control) Len() int {
	return len(c.Children)
}

// Option is one entry of a select control.
type Option struct {
	// Value is the decoded enum literal; nil for the leading empty option.
	Value    any
	Label    string
	Selected bool
}

// Text returns the submitted form of the option value.
func (o Option) Text() string {
	if o.Value == nil {
		return ""
	}
	return FormatValue(o.Value)
}

// FormatValue renders a collected value as input text: strings verbatim,
// numbers in their shortest form, composites as JSON.
func FormatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if typed {
			return "true"
		}
		return "false"
	default:
		out, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(out)
	}
}

// DecodeDefault returns the typed default of node. The boolean is false
// when node has no default.
func DecodeDefault(node schema.Node) (any, bool, error) {
	raw := node.Base().Default
	if raw == "" {
		return nil, false, nil
	}
	switch typed := node.(type) {
	case schema.StringNode:
		return raw, true, nil
	case schema.NumberNode:
		v, err := interchange.ParseNumber(raw, false)
		if err != nil {
			return nil, false, fmt.Errorf("%w: default: %v", ErrInvalidInput, err)
		}
		return v, true, nil
	case schema.BooleanNode:
		return raw == "true", true, nil
	case schema.ObjectNode, schema.ArrayNode:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, false, fmt.Errorf("%w: default %q: %v", ErrInvalidInput, raw, err)
		}
		return v, true, nil
	default:
		return nil, false, fmt.Errorf("%w: %T", schema.ErrUnsupportedKind, typed)
	}
}

// enumOptions decodes the enum literals of node. Blank entries are skipped,
// matching what the interchange encoding keeps.
func enumOptions(node schema.Node) ([]Option, error) {
	entries := node.Base().Enum
	out := make([]Option, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(entry), &v); err != nil {
			return nil, fmt.Errorf("%w: enum entry %q: %v", ErrInvalidInput, entry, err)
		}
		label, ok := v.(string)
		if !ok {
			label = FormatValue(v)
		}
		out = append(out, Option{Value: v, Label: label})
	}
	return out, nil
}

// usesSelect reports whether node renders as a select: string nodes with the
// enum specification. Enum adornments on other kinds keep their normal
// control.
func usesSelect(node schema.Node) bool {
	_, isString := node.(schema.StringNode)
	return isString && schema.IsEnum(node)
}
