package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// ParsePointer maps a field pointer such as "/lines/0/sku" back to a Path.
// The schema decides whether each token is a property name or an index, so
// objects with numeric property names stay unambiguous. The empty pointer
// is the root.
func ParsePointer(root schema.Node, ptr string) (Path, error) {
	if ptr == "" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidPointer, ptr)
	}
	tokens := strings.Split(ptr[1:], "/")
	path := make(Path, 0, len(tokens))
	current := root
	for _, token := range tokens {
		switch typed := current.(type) {
		case schema.ObjectNode:
			name := schema.UnescapePointer(token)
			child, ok := typed.Property(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q has no property %q", ErrInvalidPointer, ptr, name)
			}
			path = append(path, schema.Key(name))
			current = child
		case schema.ArrayNode:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || token != strconv.Itoa(idx) {
				return nil, fmt.Errorf("%w: %q has a bad index %q", ErrInvalidPointer, ptr, token)
			}
			path = append(path, schema.Index(idx))
			current = typed.Items
			if current == nil {
				current = schema.Placeholder()
			}
		default:
			return nil, fmt.Errorf("%w: %q descends into a leaf", ErrInvalidPointer, ptr)
		}
	}
	return path, nil
}
