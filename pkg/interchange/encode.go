package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// Encode converts node into its interchange JSON form.
func Encode(node schema.Node) ([]byte, error) {
	doc, err := ToDocument(node)
	if err != nil {
		return nil, err
	}
	return doc.MarshalJSON()
}

// ToDocument converts node into an interchange Document. Blank enum entries
// are dropped; every other enum entry and every default must be a valid
// literal for the node's kind.
func ToDocument(node schema.Node) (Document, error) {
	return toDocument(node, nil)
}

func toDocument(node schema.Node, path schema.Path) (Document, error) {
	if node == nil {
		return Document{}, fmt.Errorf("interchange: %w at %s", schema.ErrNilNode, at(path))
	}
	base := node.Base()
	doc := Document{
		Type:     node.Kind(),
		Nullable: base.Nullable,
		Title:    base.Title,
	}

	if base.Specification == schema.SpecificationEnum {
		enum, err := encodeEnum(base.Enum, path)
		if err != nil {
			return Document{}, err
		}
		doc.Enum = enum
	}

	switch typed := node.(type) {
	case schema.StringNode:
		doc.MinLength = cloneInt(typed.MinLength)
		doc.MaxLength = cloneInt(typed.MaxLength)
		if base.Default != "" {
			doc.Default = quote(base.Default)
		}
	case schema.NumberNode:
		if err := finiteBounds(typed); err != nil {
			return Document{}, fmt.Errorf("%w at %s: %v", ErrInvalidKeyword, at(path), err)
		}
		doc.Minimum = cloneFloat(typed.Minimum)
		doc.Maximum = cloneFloat(typed.Maximum)
		if base.Default != "" {
			v, err := ParseNumber(base.Default, typed.Integer)
			if err != nil {
				return Document{}, fmt.Errorf("%w at %s: %v", ErrInvalidDefault, at(path), err)
			}
			raw, err := formatNumber(v)
			if err != nil {
				return Document{}, fmt.Errorf("%w at %s: %v", ErrInvalidDefault, at(path), err)
			}
			doc.Default = raw
		}
	case schema.BooleanNode:
		if base.Default != "" {
			doc.Default = json.RawMessage(strconv.FormatBool(base.Default == "true"))
		}
	case schema.ObjectNode:
		doc.Properties = make([]NamedDocument, 0, len(typed.Properties))
		seen := make(map[string]struct{}, len(typed.Properties))
		for _, prop := range typed.Properties {
			childPath := path.Child(schema.Key(prop.Name))
			if prop.Name == "" {
				return Document{}, fmt.Errorf("interchange: %w at %s", schema.ErrEmptyPropertyName, at(path))
			}
			if _, dup := seen[prop.Name]; dup {
				return Document{}, fmt.Errorf("interchange: %w %q at %s", schema.ErrDuplicateProperty, prop.Name, at(path))
			}
			seen[prop.Name] = struct{}{}
			child, err := toDocument(prop.Schema, childPath)
			if err != nil {
				return Document{}, err
			}
			doc.Properties = append(doc.Properties, NamedDocument{Name: prop.Name, Document: child})
		}
		if base.Default != "" {
			raw, err := compactDocument(base.Default, '{')
			if err != nil {
				return Document{}, fmt.Errorf("%w at %s: %v", ErrInvalidDefault, at(path), err)
			}
			doc.Default = raw
		}
	case schema.ArrayNode:
		items := typed.Items
		if items == nil {
			items = schema.Placeholder()
		}
		child, err := toDocument(items, path.Child(schema.Index(0)))
		if err != nil {
			return Document{}, err
		}
		doc.Items = &child
		doc.MinItems = cloneInt(typed.MinItems)
		doc.MaxItems = cloneInt(typed.MaxItems)
		if base.Default != "" {
			raw, err := compactDocument(base.Default, '[')
			if err != nil {
				return Document{}, fmt.Errorf("%w at %s: %v", ErrInvalidDefault, at(path), err)
			}
			doc.Default = raw
		}
	default:
		return Document{}, fmt.Errorf("interchange: %w %T at %s", schema.ErrUnsupportedKind, node, at(path))
	}
	return doc, nil
}

func encodeEnum(entries []string, path schema.Path) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(entry)); err != nil {
			return nil, fmt.Errorf("%w at %s (entry %d): %v", ErrInvalidEnum, at(path), i, err)
		}
		out = append(out, json.RawMessage(buf.Bytes()))
	}
	return out, nil
}

// ParseNumber parses a numeric literal with floating point semantics. The
// value must be finite; integral is required when integer is set.
func ParseNumber(raw string, integer bool) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	if integer && v != math.Trunc(v) {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	return v, nil
}

func finiteBounds(node schema.NumberNode) error {
	if v := node.Minimum; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return fmt.Errorf("minimum %v is not a finite number", *v)
	}
	if v := node.Maximum; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return fmt.Errorf("maximum %v is not a finite number", *v)
	}
	return nil
}

func compactDocument(raw string, open byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return nil, err
	}
	if buf.Len() == 0 || buf.Bytes()[0] != open {
		want := "object"
		if open == '[' {
			want = "array"
		}
		return nil, fmt.Errorf("expected a JSON %s", want)
	}
	return json.RawMessage(buf.Bytes()), nil
}

func quote(s string) json.RawMessage {
	var buf bytes.Buffer
	writeString(&buf, s)
	return json.RawMessage(buf.Bytes())
}

func at(path schema.Path) string {
	if len(path) == 0 {
		return "<root>"
	}
	return path.String()
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
