// Package template defines the engine contract shared by the HTML form
// renderer and the pongo2 message engine. The pongo subpackage provides the
// implementation.
package template
