package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goliatone/go-kafkaforms/pkg/schema"
	"gopkg.in/yaml.v3"
)

// DecodeYAML parses the YAML authoring form of an interchange document.
// Mapping order is preserved, so properties come out in the order written.
func DecodeYAML(raw []byte) (schema.Node, error) {
	data, err := YAMLToJSON(raw)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// YAMLToJSON converts a single YAML document into compact JSON, keeping
// mapping keys in source order.
func YAMLToJSON(raw []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("interchange: parse yaml: %w", err)
	}
	var buf bytes.Buffer
	if err := yamlNodeToJSON(&buf, &root, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const maxYAMLDepth = 256

func yamlNodeToJSON(buf *bytes.Buffer, node *yaml.Node, depth int) error {
	if depth > maxYAMLDepth {
		return fmt.Errorf("interchange: yaml nesting exceeds %d levels", maxYAMLDepth)
	}
	switch node.Kind {
	case 0:
		buf.WriteString("null")
		return nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return yamlNodeToJSON(buf, node.Content[0], depth+1)
	case yaml.AliasNode:
		return yamlNodeToJSON(buf, node.Alias, depth+1)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("interchange: yaml line %d: mapping keys must be scalars", key.Line)
			}
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, key.Value)
			buf.WriteByte(':')
			if err := yamlNodeToJSON(buf, value, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := yamlNodeToJSON(buf, item, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		return yamlScalarToJSON(buf, node)
	}
	return fmt.Errorf("interchange: yaml line %d: unsupported node kind %d", node.Line, node.Kind)
}

func yamlScalarToJSON(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("interchange: yaml line %d: %w", node.Line, err)
		}
		buf.WriteString(strconv.FormatBool(b))
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("interchange: yaml line %d: %w", node.Line, err)
		}
		out, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("interchange: yaml line %d: %w", node.Line, err)
		}
		buf.Write(out)
	default:
		writeString(buf, node.Value)
	}
	return nil
}
