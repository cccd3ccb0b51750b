// Package store provides an in-memory realtime tree database.
//
// A [Store] holds one persistent tree. Writes go through a [Reference] and
// commit a new root; the store then reconciles the old and new roots and
// notifies the listeners whose locations changed, before the write returns.
//
// # References and queries
//
// A [Reference] addresses a location by path. It embeds a [Query], which adds
// ordering, range filters and limits on top of the location:
//
//	ref, _ := s.Ref("users")
//	q, _ := ref.OrderByChild("age")
//	q, _ = q.LimitToFirst(10)
//
// Builder methods never change their receiver.
//
// # Events
//
// Listeners register with [Query.On] for one of the event types [Value],
// [ChildAdded], [ChildChanged] and [ChildRemoved]. Within one commit events
// fire in the order child_removed, child_added, child_changed, value, and
// listeners of one type fire in registration order. [ChildMoved] is not
// supported and fails with [ErrUnimplemented].
//
// A value listener receives the current data as soon as it registers, and a
// child_added listener receives every existing child.
//
// # Configuration
//
// Use [DefaultConfig] for an empty store, or [LoadConfig] to read a YAML or
// JSON file:
//
//	cfg, err := store.LoadConfig("canopy.yaml")
//	s, err := store.New(cfg, logger)
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrUnimplemented] - child_moved listeners and the priority API
//   - [ErrUnknownEventType] - event name is not recognized
//   - [ErrNilCallback] - listener registered without a callback
//   - [ErrURLMismatch] - URL outside the configured database URL
//   - [ErrOverlappingUpdate] - one update path contains another
//   - [ErrNotAnItem] - exported value is not a map
//
// Invalid paths fail with keypath.ErrInvalidKey and invalid values with the
// errors of package tree.
package store
