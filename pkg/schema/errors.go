package schema

import "errors"

var (
	// ErrUnsupportedKind is returned for type names outside Kinds.
	ErrUnsupportedKind = errors.New("schema: unsupported kind")
	// ErrDuplicateProperty reports two properties sharing a name in the same
	// object.
	ErrDuplicateProperty = errors.New("schema: duplicate property")
	// ErrEmptyPropertyName reports a property without a name.
	ErrEmptyPropertyName = errors.New("schema: empty property name")
	// ErrTitleTooLong reports a title over MaxTitleLength runes.
	ErrTitleTooLong = errors.New("schema: title too long")
	// ErrInvertedBounds reports a lower bound above its upper bound.
	ErrInvertedBounds = errors.New("schema: lower bound exceeds upper bound")
	// ErrNonFiniteBound reports a NaN or infinite number bound.
	ErrNonFiniteBound = errors.New("schema: bound is not a finite number")
	// ErrNegativeBound reports a negative length or item count.
	ErrNegativeBound = errors.New("schema: negative bound")
	// ErrPathNotFound is returned when a path names a property that does not
	// exist.
	ErrPathNotFound = errors.New("schema: path not found")
	// ErrPathMismatch is returned when a path segment does not fit the node it
	// addresses, e.g. an index into an object.
	ErrPathMismatch = errors.New("schema: path does not match schema")
	// ErrIndexOutOfRange is returned by index based edits.
	ErrIndexOutOfRange = errors.New("schema: index out of range")
	ErrNilNode         = errors.New("schema: nil node")
)
