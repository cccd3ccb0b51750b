package stream

import "errors"

var (
	// ErrMissingKey is returned when a stream record carries no item key.
	ErrMissingKey = errors.New("canopy: stream record has no key")

	// ErrUnsupportedAttribute is returned when an attribute cannot be stored as a tree value.
	ErrUnsupportedAttribute = errors.New("canopy: unsupported attribute type")
)
