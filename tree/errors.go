package tree

import "errors"

var (
	// ErrUndefinedNotAllowed is returned when a written value contains Undefined.
	ErrUndefinedNotAllowed = errors.New("canopy: undefined is not allowed in the data tree")

	// ErrUnsupportedType is returned when a written value cannot be represented in the tree.
	ErrUnsupportedType = errors.New("canopy: unsupported value type")
)
