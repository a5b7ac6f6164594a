package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// Document is the JSON-Schema shaped interchange form of a schema node.
// Properties keep declaration order, so marshalling is deterministic and
// mirrors the editor's layout.
type Document struct {
	Type       schema.Kind
	Nullable   bool
	Title      string
	MinLength  *int
	MaxLength  *int
	Minimum    *float64
	Maximum    *float64
	Properties []NamedDocument
	Items      *Document
	MinItems   *int
	MaxItems   *int
	// Enum is nil when the node has no enum specification. Entries are
	// compact JSON values.
	Enum []json.RawMessage
	// Default is nil when absent.
	Default json.RawMessage
}

// NamedDocument is one entry of an object's properties.
type NamedDocument struct {
	Name     string
	Document Document
}

// MarshalJSON writes the document with a fixed key order: type, title,
// constraints, properties, items, enum, default.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.writeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d Document) writeTo(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	buf.WriteString(`"type":`)
	if d.Nullable {
		buf.WriteString(`["null",`)
		writeString(buf, string(d.Type))
		buf.WriteByte(']')
	} else {
		writeString(buf, string(d.Type))
	}

	buf.WriteString(`,"title":`)
	writeString(buf, d.Title)

	writeInt(buf, "minLength", d.MinLength)
	writeInt(buf, "maxLength", d.MaxLength)
	if err := writeFloat(buf, "minimum", d.Minimum); err != nil {
		return err
	}
	if err := writeFloat(buf, "maximum", d.Maximum); err != nil {
		return err
	}

	if d.Properties != nil || d.Type == schema.KindObject {
		buf.WriteString(`,"properties":{`)
		for i, prop := range d.Properties {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, prop.Name)
			buf.WriteByte(':')
			if err := prop.Document.writeTo(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	if d.Items != nil {
		buf.WriteString(`,"items":`)
		if err := d.Items.writeTo(buf); err != nil {
			return err
		}
	}

	writeInt(buf, "minItems", d.MinItems)
	writeInt(buf, "maxItems", d.MaxItems)

	if d.Enum != nil {
		buf.WriteString(`,"enum":[`)
		for i, entry := range d.Enum {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeRaw(buf, entry); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	if d.Default != nil {
		buf.WriteString(`,"default":`)
		if err := writeRaw(buf, d.Default); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeInt(buf *bytes.Buffer, key string, v *int) {
	if v == nil {
		return
	}
	buf.WriteString(`,"` + key + `":`)
	buf.WriteString(strconv.Itoa(*v))
}

func writeFloat(buf *bytes.Buffer, key string, v *float64) error {
	if v == nil {
		return nil
	}
	out, err := formatNumber(*v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidKeyword, key, err)
	}
	buf.WriteString(`,"` + key + `":`)
	buf.Write(out)
	return nil
}

func writeRaw(buf *bytes.Buffer, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return ErrInvalidLiteral
	}
	return json.Compact(buf, raw)
}

// writeString writes s as a JSON string without HTML escaping so literals
// keep the form users typed.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
}

// formatNumber writes v as a JSON number. NaN and infinities have no JSON
// form and are rejected.
func formatNumber(v float64) ([]byte, error) {
	return json.Marshal(v)
}
