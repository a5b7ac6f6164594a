package render

import (
	"sort"
	"strconv"
	"strings"
)

// HiddenField is a hidden input emitted before the generated controls. The
// server uses them to carry the bootstrap group and topic a submitted
// message is sent to.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField with a trimmed name.
func Hidden(name, value string) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: value}
}

// HiddenSet collects hidden inputs by name. Blank names and values are not
// recorded, so optional routing parameters can be added unconditionally.
type HiddenSet map[string]string

// Add records value under name, replacing any earlier value.
func (h HiddenSet) Add(name, value string) HiddenSet {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(value) == "" {
		return h
	}
	h[name] = value
	return h
}

// AddID records a positive numeric id; zero and negative ids mean "unset".
func (h HiddenSet) AddID(name string, id int64) HiddenSet {
	if id <= 0 {
		return h
	}
	return h.Add(name, strconv.FormatInt(id, 10))
}

// Fields returns the set sorted by name.
func (h HiddenSet) Fields() []HiddenField {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: h[name]})
	}
	return out
}
