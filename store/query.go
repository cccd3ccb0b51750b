package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jacentio/canopy/keypath"
	"github.com/jacentio/canopy/query"
	"github.com/jacentio/canopy/tree"
)

// Query is a location plus a query specification. Every builder method
// returns a new Query; the receiver is never changed.
type Query struct {
	store *Store
	path  []string
	spec  query.Spec
}

// Ref returns a reference to the query's location.
func (q Query) Ref() *Reference {
	return q.store.reference(q.path)
}

// Path returns the slash-joined location.
func (q Query) Path() string {
	return keypath.Join(q.path)
}

// Spec returns the query specification.
func (q Query) Spec() query.Spec {
	return q.spec
}

func (q Query) with(spec query.Spec, err error) (Query, error) {
	if err != nil {
		return q, err
	}
	q.spec = spec
	return q, nil
}

// OrderByKey orders children by key.
func (q Query) OrderByKey() (Query, error) {
	return q.with(q.spec.OrderByKey())
}

// OrderByValue orders children by value.
func (q Query) OrderByValue() (Query, error) {
	return q.with(q.spec.OrderByValue())
}

// OrderByChild orders children by the value at path below each child.
func (q Query) OrderByChild(path string) (Query, error) {
	return q.with(q.spec.OrderByChild(path))
}

// OrderByPriority always fails: priorities are not supported.
func (q Query) OrderByPriority() (Query, error) {
	return q, fmt.Errorf("%w: orderByPriority", ErrUnimplemented)
}

// StartAt sets the inclusive lower bound.
func (q Query) StartAt(value any) (Query, error) {
	return q.with(q.spec.StartAt(value))
}

// EndAt sets the inclusive upper bound.
func (q Query) EndAt(value any) (Query, error) {
	return q.with(q.spec.EndAt(value))
}

// EqualTo sets both bounds.
func (q Query) EqualTo(value any) (Query, error) {
	return q.with(q.spec.EqualTo(value))
}

// LimitToFirst keeps the first amount children.
func (q Query) LimitToFirst(amount int) (Query, error) {
	return q.with(q.spec.LimitToFirst(amount))
}

// LimitToLast keeps the last amount children.
func (q Query) LimitToLast(amount int) (Query, error) {
	return q.with(q.spec.LimitToLast(amount))
}

// IsEqual reports whether both queries address the same location of the
// same store with equivalent specifications.
func (q Query) IsEqual(other Query) bool {
	return q.store == other.store &&
		keypath.Join(q.path) == keypath.Join(other.path) &&
		q.spec.Equal(other.spec)
}

// String returns the absolute URL of the query's location.
func (q Query) String() string {
	return q.store.config.DatabaseURL + "/" + keypath.Join(q.path)
}

// Get returns a snapshot of the current data at the query's location.
func (q Query) Get() Snapshot {
	return newSnapshot(q.Ref(), tree.Get(q.store.root, q.path...), q.spec)
}

// Children returns the keys of the children selected by the query, in
// query order.
func (q Query) Children() []string {
	return query.Children(tree.Get(q.store.root, q.path...), q.spec)
}

// On registers cb for eventType at the query's location and returns the
// token that unregisters it. A value listener is called at once with the
// current data and a child_added listener once per existing child.
func (q Query) On(eventType EventType, cb Callback) (uuid.UUID, error) {
	return q.store.on(q, eventType, cb, false)
}

// Once is On for a listener that is removed after its first call.
func (q Query) Once(eventType EventType, cb Callback) (uuid.UUID, error) {
	return q.store.on(q, eventType, cb, true)
}

// Off removes the eventType listener registered under token. Unknown tokens
// are ignored.
func (q Query) Off(eventType EventType, token uuid.UUID) error {
	if err := eventType.validate(); err != nil {
		return err
	}
	if q.store.registry.Unregister(eventType, token) {
		q.store.logger.Debug("listener removed",
			"eventType", eventType,
			"token", token,
		)
	}
	return nil
}

// OffAll removes the listeners at the query's location of the given types,
// or of every type when none are given.
func (q Query) OffAll(eventTypes ...EventType) error {
	for _, t := range eventTypes {
		if err := t.validate(); err != nil {
			return err
		}
	}
	n := q.store.registry.UnregisterAt(keypath.Join(q.path), eventTypes...)
	q.store.logger.Debug("listeners removed",
		"path", keypath.Join(q.path),
		"count", n,
	)
	return nil
}
