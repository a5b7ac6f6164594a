// Package form renders a schema tree into a control view model and collects
// the user's input into a value tree that mirrors the schema. A Session owns
// one schema and one value tree; renderers (HTML, terminal) drive it through
// Render, Input and the element operations, then read the result with
// Collect.
package form
