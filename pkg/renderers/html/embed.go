package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle so callers can extend or
// override the form chrome.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
