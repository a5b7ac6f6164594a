package interchange

import "errors"

var (
	// ErrNotObject is returned when a schema document (or a nested one under
	// properties/items) is not a JSON object.
	ErrNotObject = errors.New("interchange: schema document must be an object")
	// ErrInvalidType reports a malformed "type" keyword.
	ErrInvalidType = errors.New("interchange: invalid type")
	// ErrInvalidKeyword reports a keyword with the wrong JSON type.
	ErrInvalidKeyword = errors.New("interchange: invalid keyword")
	// ErrInvalidDefault reports a default that is not a valid literal for the
	// node kind.
	ErrInvalidDefault = errors.New("interchange: invalid default")
	// ErrInvalidEnum reports an enum entry that is not valid JSON.
	ErrInvalidEnum = errors.New("interchange: invalid enum entry")
	// ErrInvalidLiteral is returned when marshalling a Document holding raw
	// JSON that does not parse.
	ErrInvalidLiteral = errors.New("interchange: invalid JSON literal")
)
