package render

import (
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// field pointer and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrors assigns each payload entry to the deepest rendered control its
// path names. Paths may be JSON pointers ("/lines/0/sku", "#/lines/0/sku")
// or dotted ("lines[0].sku"), optionally wrapped in "body", "input" or
// similar envelope segments. Unknown paths become form-level messages so
// nothing is lost.
func MapErrors(root form.Control, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	pointers := make(map[string]struct{})
	collectPointers(root, pointers)

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		mapped, formLevel := mapErrorPath(rawPath, pointers)
		if formLevel {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[mapped] = append(mapping.Fields[mapped], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func collectPointers(ctrl form.Control, dest map[string]struct{}) {
	if len(ctrl.Path) > 0 {
		dest[ctrl.Pointer()] = struct{}{}
	}
	for _, child := range ctrl.Children {
		collectPointers(child, dest)
	}
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, pointers map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	if ptr := longestMatchingPointer(segments, pointers); ptr != "" {
		return ptr, false
	}
	if stripped := dropWrapperSegments(segments); len(stripped) != len(segments) {
		if ptr := longestMatchingPointer(stripped, pointers); ptr != "" {
			return ptr, false
		}
	}
	return "", true
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}

	pointerStyle := strings.HasPrefix(path, "/") || strings.HasPrefix(path, "#/")
	clean := strings.TrimPrefix(path, "#")
	clean = strings.TrimPrefix(clean, "$")

	var parts []string
	if pointerStyle {
		parts = strings.Split(strings.Trim(clean, "/"), "/")
	} else {
		replacer := strings.NewReplacer("[", ".", "]", "")
		clean = strings.Trim(replacer.Replace(clean), ".")
		parts = strings.Split(clean, ".")
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		if pointerStyle {
			segment = schema.UnescapePointer(segment)
		}
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":    {},
		"request": {},
		"payload": {},
		"data":    {},
		"input":   {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func longestMatchingPointer(segments []string, pointers map[string]struct{}) string {
	if len(segments) == 0 || len(pointers) == 0 {
		return ""
	}
	for end := len(segments); end > 0; end-- {
		path := make(schema.Path, 0, end)
		for _, seg := range segments[:end] {
			path = append(path, schema.Key(seg))
		}
		// Index segments render like keys, so Key is enough to build the
		// pointer text.
		candidate := path.Pointer()
		if _, ok := pointers[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
