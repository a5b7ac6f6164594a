package loader

import (
	"net/url"
	"path"
	"strings"
)

// SourceKind enumerates where a schema document is read from.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source identifies a schema document.
type Source struct {
	Kind     SourceKind
	Location string
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(p string) Source {
	return Source{Kind: SourceKindFile, Location: p}
}

// SourceFromFS returns a Source naming a file inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return Source{Kind: SourceKindFS, Location: name}
}

// SourceFromURL returns a Source for an http(s) URL.
func SourceFromURL(raw string) Source {
	return Source{Kind: SourceKindURL, Location: raw}
}

// ParseSource picks the URL kind for http(s) locations and the file kind
// otherwise. It returns false for blank input.
func ParseSource(raw string) (Source, bool) {
	location := strings.TrimSpace(raw)
	if location == "" {
		return Source{}, false
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return SourceFromURL(location), true
	}
	return SourceFromFile(location), true
}

// isYAML reports whether the location names a YAML document.
func (s Source) isYAML() bool {
	name := s.Location
	if s.Kind == SourceKindURL {
		if parsed, err := url.Parse(name); err == nil {
			name = parsed.Path
		}
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
