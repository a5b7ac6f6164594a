package validation

import (
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/interchange"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// ValidateSchema decodes an interchange document and checks the resulting
// tree, including that it encodes back to a canonical document. The node is
// nil when decoding fails.
func ValidateSchema(raw []byte) (schema.Node, Result) {
	node, err := interchange.Decode(raw)
	if err != nil {
		return nil, Result{Issues: []Issue{issueFromError(err)}}
	}
	if err := schema.Validate(node); err != nil {
		return node, Result{Issues: issuesFromErrors(err)}
	}
	if _, err := interchange.Encode(node); err != nil {
		return node, Result{Issues: []Issue{issueFromError(err)}}
	}
	return node, Result{Valid: true}
}

func issuesFromErrors(err error) []Issue {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []Issue
		for _, inner := range joined.Unwrap() {
			out = append(out, issuesFromErrors(inner)...)
		}
		return out
	}
	return []Issue{issueFromError(err)}
}

// issueFromError splits "pkg: reason at <location>: detail" messages into
// an issue. Locations are either "#/properties/x" pointers into the
// interchange document or dotted node paths.
func issueFromError(err error) Issue {
	if err == nil {
		return Issue{Message: "unknown error"}
	}
	msg := trimPrefixes(strings.TrimSpace(err.Error()))

	idx := strings.LastIndex(msg, " at ")
	if idx < 0 {
		return Issue{Message: msg}
	}
	location, detail := msg[idx+4:], ""
	if end := strings.IndexAny(location, ": "); end >= 0 {
		location, detail = location[:end], strings.TrimSpace(strings.TrimLeft(location[end:], ": "))
	}
	message := strings.TrimSpace(msg[:idx])
	if detail != "" {
		message += ": " + detail
	}

	if strings.HasPrefix(location, "#") {
		ptr := strings.TrimPrefix(location, "#")
		return Issue{Path: ptr, Field: fieldPathFromPointer(ptr), Message: message}
	}
	if location == "<root>" {
		location = ""
	}
	return Issue{Field: location, Message: message}
}

// trimPrefixes drops the package prefixes wrapped errors accumulate.
func trimPrefixes(msg string) string {
	for {
		trimmed := strings.TrimPrefix(msg, "interchange: ")
		trimmed = strings.TrimPrefix(trimmed, "schema: ")
		if trimmed == msg {
			return msg
		}
		msg = trimmed
	}
}

// fieldPathFromPointer turns a pointer into the interchange document
// ("/properties/lines/items/properties/sku") into a field path
// ("lines.items.sku"). Keyword segments other than properties and items
// are kept.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := schema.UnescapePointer(parts[idx])
		switch segment {
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, schema.UnescapePointer(parts[idx+1]))
				idx++
			}
		case "":
			continue
		default:
			out = append(out, segment)
		}
	}
	return strings.Join(out, ".")
}
