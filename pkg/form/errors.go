package form

import "errors"

var (
	// ErrPathNotFound is returned when a path does not address a node of the
	// session's schema.
	ErrPathNotFound = errors.New("form: path not found in schema")
	// ErrShapeMismatch reports a value tree container that does not match
	// the schema, e.g. a string where a list is expected.
	ErrShapeMismatch = errors.New("form: value does not match schema shape")
	// ErrNotArray is returned by element operations on non-array paths.
	ErrNotArray = errors.New("form: path is not an array")
	// ErrIndexOutOfRange is returned for element indices past the list end.
	ErrIndexOutOfRange = errors.New("form: index out of range")
	// ErrInvalidInput reports text that cannot be parsed for the leaf kind.
	ErrInvalidInput = errors.New("form: invalid input")
	// ErrInvalidPointer reports a malformed field pointer.
	ErrInvalidPointer = errors.New("form: invalid pointer")
)
