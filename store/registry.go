package store

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/jacentio/canopy/query"
)

// EventType names a kind of listener event.
type EventType string

const (
	// Value fires with the data at a location whenever it changes.
	Value EventType = "value"
	// ChildAdded fires for each child that enters a query's results.
	ChildAdded EventType = "child_added"
	// ChildChanged fires for each child in a query's results whose data changed.
	ChildChanged EventType = "child_changed"
	// ChildRemoved fires for each child that leaves a query's results.
	ChildRemoved EventType = "child_removed"
	// ChildMoved is recognized but cannot be listened to.
	ChildMoved EventType = "child_moved"
)

// dispatchOrder is the order event types fire in within one commit.
var dispatchOrder = []EventType{ChildRemoved, ChildAdded, ChildChanged, Value}

// ParseEventType converts an event name into an EventType.
func ParseEventType(name string) (EventType, error) {
	t := EventType(name)
	if err := t.validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t EventType) validate() error {
	switch t {
	case Value, ChildAdded, ChildChanged, ChildRemoved:
		return nil
	case ChildMoved:
		return fmt.Errorf("%w: %s listener", ErrUnimplemented, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownEventType, string(t))
}

// Callback receives a snapshot and, for child events, the key of the
// sibling immediately before the child in query order ("" when first).
type Callback func(snap Snapshot, prevKey string)

// Listener is a registered callback together with the query it observes.
type Listener struct {
	Token     uuid.UUID
	EventType EventType

	// Location is the slash-joined path the listener is registered at.
	Location string
	Path     []string
	Spec     query.Spec

	callback Callback
	once     bool
	active   bool
}

type listenerKey struct {
	eventType EventType
	location  string
}

// Registry holds listeners keyed by event type and location, and keeps
// their registration order.
type Registry struct {
	ordered []*Listener
	byKey   map[listenerKey]map[uuid.UUID]*Listener
	byToken map[uuid.UUID]*Listener
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		ordered: []*Listener{},
		byKey:   make(map[listenerKey]map[uuid.UUID]*Listener),
		byToken: make(map[uuid.UUID]*Listener),
	}
}

// Register adds a listener and assigns its token.
func (r *Registry) Register(l *Listener) uuid.UUID {
	l.Token = uuid.New()
	l.active = true

	key := listenerKey{l.EventType, l.Location}
	if r.byKey[key] == nil {
		r.byKey[key] = make(map[uuid.UUID]*Listener)
	}
	r.byKey[key][l.Token] = l
	r.byToken[l.Token] = l
	r.ordered = append(r.ordered, l)

	listenersActive.WithLabelValues(string(l.EventType)).Inc()
	return l.Token
}

// Unregister removes the listener with token if it was registered for
// eventType. It reports whether a listener was removed.
func (r *Registry) Unregister(eventType EventType, token uuid.UUID) bool {
	l, ok := r.byToken[token]
	if !ok || l.EventType != eventType {
		return false
	}
	r.remove(l)
	return true
}

// UnregisterAt removes every listener at location whose type is in
// eventTypes, or of any type when eventTypes is empty. It returns the number
// of listeners removed.
func (r *Registry) UnregisterAt(location string, eventTypes ...EventType) int {
	var doomed []*Listener
	for _, l := range r.ordered {
		if l.Location != location {
			continue
		}
		if len(eventTypes) == 0 || slices.Contains(eventTypes, l.EventType) {
			doomed = append(doomed, l)
		}
	}
	for _, l := range doomed {
		r.remove(l)
	}
	return len(doomed)
}

func (r *Registry) remove(l *Listener) {
	l.active = false

	key := listenerKey{l.EventType, l.Location}
	delete(r.byKey[key], l.Token)
	if len(r.byKey[key]) == 0 {
		delete(r.byKey, key)
	}
	delete(r.byToken, l.Token)
	r.ordered = slices.DeleteFunc(r.ordered, func(o *Listener) bool { return o == l })

	listenersActive.WithLabelValues(string(l.EventType)).Dec()
}

// Get returns the listener registered under token.
func (r *Registry) Get(token uuid.UUID) (*Listener, bool) {
	l, ok := r.byToken[token]
	return l, ok
}

// At returns the listeners of eventType at location in registration order.
func (r *Registry) At(eventType EventType, location string) []*Listener {
	bucket := r.byKey[listenerKey{eventType, location}]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]*Listener, 0, len(bucket))
	for _, l := range r.ordered {
		if _, ok := bucket[l.Token]; ok {
			out = append(out, l)
		}
	}
	return out
}

// OfType returns every listener of eventType in registration order. The
// returned slice is a copy and is not affected by later registrations.
func (r *Registry) OfType(eventType EventType) []*Listener {
	var out []*Listener
	for _, l := range r.ordered {
		if l.EventType == eventType {
			out = append(out, l)
		}
	}
	return out
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	return len(r.ordered)
}
