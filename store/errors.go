package store

import "errors"

var (
	// ErrUnimplemented is returned by operations the store deliberately does not support,
	// such as child_moved listeners and the priority API.
	ErrUnimplemented = errors.New("canopy: not implemented")

	// ErrUnknownEventType is returned when an event type is not one of the known types.
	ErrUnknownEventType = errors.New("canopy: unknown event type")

	// ErrNilCallback is returned when a listener is registered without a callback.
	ErrNilCallback = errors.New("canopy: nil callback")

	// ErrURLMismatch is returned by RefFromURL when the URL does not belong to this database.
	ErrURLMismatch = errors.New("canopy: url does not match database url")

	// ErrOverlappingUpdate is returned when one update path is an ancestor of another.
	ErrOverlappingUpdate = errors.New("canopy: update paths overlap")

	// ErrNotAnItem is returned when exporting a value that is not a map as an item.
	ErrNotAnItem = errors.New("canopy: value is not a map")
)
