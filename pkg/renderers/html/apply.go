package html

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

var (
	// ErrInvalidAction reports an unparseable _action value.
	ErrInvalidAction = errors.New("html: invalid form action")
	// ErrInvalidLength reports a _len field that is not a non-negative integer.
	ErrInvalidLength = errors.New("html: invalid array length")
)

// ActionKind names what the submit button asked for.
type ActionKind string

const (
	ActionSubmit ActionKind = "submit"
	ActionAdd    ActionKind = "add"
	ActionRemove ActionKind = "remove"
)

// Action is the button a post was made with. Index is set for removals.
type Action struct {
	Kind  ActionKind
	Path  form.Path
	Index int
}

// FieldErrors collects per-field input failures keyed by field pointer. It
// is returned by ApplyForm after every other field has been applied, so
// the form can be re-rendered with the messages.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+strings.Join(e[key], "; "))
	}
	return "html: invalid input: " + strings.Join(parts, ", ")
}

type postedField struct {
	path  form.Path
	ptr   string
	value string
}

// ApplyForm replays a posted form onto session: array lengths first
// (shallowest first), then leaf inputs, then the requested action. Fields
// whose name is not a pointer, such as hidden extras, are ignored.
//
// A bad pointer or action aborts with an error. Unparseable leaf input is
// reported as FieldErrors after the rest of the post has been applied.
func ApplyForm(session *form.Session, values url.Values) (Action, error) {
	root := session.Schema()

	var lengths, inputs []postedField
	for name, posted := range values {
		if len(posted) == 0 {
			continue
		}
		last := posted[len(posted)-1]
		switch {
		case strings.HasPrefix(name, LenPrefix):
			ptr := strings.TrimPrefix(name, LenPrefix)
			path, err := parseFieldName(root, ptr)
			if err != nil {
				return Action{}, err
			}
			lengths = append(lengths, postedField{path: path, ptr: ptr, value: last})
		case name == RootName || strings.HasPrefix(name, "/") || strings.HasPrefix(name, "#/"):
			path, err := parseFieldName(root, name)
			if err != nil {
				return Action{}, err
			}
			inputs = append(inputs, postedField{path: path, ptr: path.Pointer(), value: last})
		}
	}
	sortFields(lengths)
	sortFields(inputs)

	for _, field := range lengths {
		n, err := strconv.Atoi(strings.TrimSpace(field.value))
		if err != nil || n < 0 {
			return Action{}, fmt.Errorf("%w: %s=%q", ErrInvalidLength, field.ptr, field.value)
		}
		if err := session.SetLen(field.path, n); err != nil {
			return Action{}, fmt.Errorf("html: restore length of %s: %w", field.ptr, err)
		}
	}

	fieldErrs := FieldErrors{}
	for _, field := range inputs {
		node, err := schema.Lookup(root, field.path)
		if err != nil {
			return Action{}, fmt.Errorf("html: %s: %w", field.ptr, err)
		}
		switch node.(type) {
		case schema.ObjectNode, schema.ArrayNode:
			continue
		}
		if err := session.Input(field.path, field.value); err != nil {
			if errors.Is(err, form.ErrInvalidInput) {
				fieldErrs[field.ptr] = append(fieldErrs[field.ptr], inputMessage(node, field.value))
				continue
			}
			return Action{}, fmt.Errorf("html: apply %s: %w", field.ptr, err)
		}
	}

	action, err := parseAction(root, values.Get(ActionField))
	if err != nil {
		return Action{}, err
	}
	switch action.Kind {
	case ActionAdd:
		if _, err := session.AddElement(action.Path); err != nil {
			return Action{}, fmt.Errorf("html: add element: %w", err)
		}
	case ActionRemove:
		if err := session.RemoveElement(action.Path, action.Index); err != nil {
			return Action{}, fmt.Errorf("html: remove element: %w", err)
		}
	}

	if len(fieldErrs) > 0 {
		return action, fieldErrs
	}
	return action, nil
}

func parseFieldName(root schema.Node, name string) (form.Path, error) {
	ptr := strings.TrimPrefix(name, "#")
	path, err := form.ParsePointer(root, ptr)
	if err != nil {
		return nil, fmt.Errorf("html: field %q: %w", name, err)
	}
	return path, nil
}

func parseAction(root schema.Node, raw string) (Action, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "" || raw == string(ActionSubmit):
		return Action{Kind: ActionSubmit}, nil
	case strings.HasPrefix(raw, "add:"):
		path, err := parseFieldName(root, strings.TrimPrefix(raw, "add:"))
		if err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		return Action{Kind: ActionAdd, Path: path}, nil
	case strings.HasPrefix(raw, "remove:"):
		rest := strings.TrimPrefix(raw, "remove:")
		sep := strings.LastIndex(rest, ":")
		if sep < 0 {
			return Action{}, fmt.Errorf("%w: %q has no index", ErrInvalidAction, raw)
		}
		idx, err := strconv.Atoi(rest[sep+1:])
		if err != nil || idx < 0 {
			return Action{}, fmt.Errorf("%w: %q has a bad index", ErrInvalidAction, raw)
		}
		path, err := parseFieldName(root, rest[:sep])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		return Action{Kind: ActionRemove, Path: path, Index: idx}, nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
}

func sortFields(fields []postedField) {
	sort.Slice(fields, func(i, j int) bool {
		if len(fields[i].path) != len(fields[j].path) {
			return len(fields[i].path) < len(fields[j].path)
		}
		return fields[i].ptr < fields[j].ptr
	})
}

func inputMessage(node schema.Node, value string) string {
	switch typed := node.(type) {
	case schema.NumberNode:
		if typed.Integer {
			return fmt.Sprintf("%q is not a whole number", value)
		}
		return fmt.Sprintf("%q is not a number", value)
	case schema.BooleanNode:
		return fmt.Sprintf("%q is not a boolean", value)
	default:
		return fmt.Sprintf("%q is not an allowed value", value)
	}
}
