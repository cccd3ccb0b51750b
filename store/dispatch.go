package store

import (
	"github.com/google/uuid"

	"github.com/jacentio/canopy/keypath"
	"github.com/jacentio/canopy/query"
	"github.com/jacentio/canopy/reconcile"
	"github.com/jacentio/canopy/tree"
)

// event is one pending listener invocation.
type event struct {
	listener *Listener
	snap     Snapshot
	prevKey  string
}

func (s *Store) on(q Query, eventType EventType, cb Callback, once bool) (uuid.UUID, error) {
	if err := eventType.validate(); err != nil {
		return uuid.Nil, err
	}
	if cb == nil {
		return uuid.Nil, ErrNilCallback
	}

	l := &Listener{
		EventType: eventType,
		Location:  keypath.Join(q.path),
		Path:      q.path,
		Spec:      q.spec,
		callback:  cb,
		once:      once,
	}
	token := s.registry.Register(l)
	s.logger.Debug("listener registered",
		"eventType", eventType,
		"path", l.Location,
		"token", token,
		"query", l.Spec,
	)

	// Initial events describe the data as it is now
	ref := s.reference(l.Path)
	node := tree.Get(s.root, l.Path...)
	switch eventType {
	case Value:
		s.fire(event{listener: l, snap: newSnapshot(ref, node, l.Spec)})
	case ChildAdded:
		prevKey := ""
		for _, key := range query.Children(node, l.Spec) {
			s.fire(event{
				listener: l,
				snap:     newSnapshot(ref.childRef([]string{key}), tree.Get(node, key), query.Spec{}),
				prevKey:  prevKey,
			})
			prevKey = key
		}
	}
	return token, nil
}

// dispatch notifies listeners of the changes between prev and next. All
// events are computed before the first one fires, so listeners that write
// or unregister do not affect which events this commit produces.
func (s *Store) dispatch(prev, next tree.Node, changes *reconcile.ChangeTree) {
	var pending []event
	for _, eventType := range dispatchOrder {
		for _, l := range s.registry.OfType(eventType) {
			pending = append(pending, s.eventsFor(l, prev, next, changes)...)
		}
	}
	for _, e := range pending {
		s.fire(e)
	}
}

// eventsFor computes the events one listener receives for a commit.
func (s *Store) eventsFor(l *Listener, prev, next tree.Node, changes *reconcile.ChangeTree) []event {
	changed := changes.Lookup(l.Path...)
	if changed == nil {
		return nil
	}

	ref := s.reference(l.Path)
	nextNode := tree.Get(next, l.Path...)
	if l.EventType == Value {
		return []event{{listener: l, snap: newSnapshot(ref, nextNode, l.Spec)}}
	}

	// Child events compare the query results before and after the commit
	prevNode := tree.Get(prev, l.Path...)
	prevKeys := query.Children(prevNode, l.Spec)
	nextKeys := query.Children(nextNode, l.Spec)
	inPrev := keySet(prevKeys)
	inNext := keySet(nextKeys)

	child := func(node tree.Node, key string) Snapshot {
		return newSnapshot(ref.childRef([]string{key}), tree.Get(node, key), query.Spec{})
	}

	var out []event
	switch l.EventType {
	case ChildRemoved:
		for _, key := range prevKeys {
			if !inNext[key] {
				out = append(out, event{listener: l, snap: child(prevNode, key)})
			}
		}
	case ChildAdded:
		for i, key := range nextKeys {
			if !inPrev[key] {
				out = append(out, event{listener: l, snap: child(nextNode, key), prevKey: precedingKey(nextKeys, i)})
			}
		}
	case ChildChanged:
		for i, key := range nextKeys {
			if inPrev[key] && changed.Children[key] != nil {
				out = append(out, event{listener: l, snap: child(nextNode, key), prevKey: precedingKey(nextKeys, i)})
			}
		}
	}
	return out
}

// fire invokes one listener unless it was removed in the meantime. Once
// listeners are removed before their callback runs.
func (s *Store) fire(e event) {
	l := e.listener
	if !l.active {
		return
	}
	if l.once {
		s.registry.remove(l)
	}

	eventsDispatched.WithLabelValues(string(l.EventType)).Inc()
	s.logger.Debug("dispatching event",
		"eventType", l.EventType,
		"path", l.Location,
		"key", e.snap.Key(),
		"prevKey", e.prevKey,
	)
	l.callback(e.snap, e.prevKey)
}

func precedingKey(keys []string, i int) string {
	if i == 0 {
		return ""
	}
	return keys[i-1]
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
