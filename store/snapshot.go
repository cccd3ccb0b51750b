package store

import (
	"github.com/jacentio/canopy/keypath"
	"github.com/jacentio/canopy/query"
	"github.com/jacentio/canopy/tree"
)

// Snapshot is a read-only view of the data at a location at one point in
// time. Later writes never change a Snapshot.
type Snapshot struct {
	ref  *Reference
	node tree.Node
	spec query.Spec
}

func newSnapshot(ref *Reference, node tree.Node, spec query.Spec) Snapshot {
	return Snapshot{ref: ref, node: node, spec: spec}
}

// Key returns the last segment of the snapshot's location, or "" at the root.
func (s Snapshot) Key() string {
	return s.ref.Key()
}

// Ref returns a reference to the snapshot's location.
func (s Snapshot) Ref() *Reference {
	return s.ref
}

// Node returns the raw tree node. The node must not be modified.
func (s Snapshot) Node() tree.Node {
	return s.node
}

// Val returns the data as plain Go values: nil, bool, float64, string or
// map[string]any.
func (s Snapshot) Val() any {
	return tree.Export(s.node)
}

// ExportVal is Val. Priorities are not stored, so there is nothing more to
// export.
func (s Snapshot) ExportVal() any {
	return s.Val()
}

// Exists reports whether the snapshot holds any data.
func (s Snapshot) Exists() bool {
	return s.node != nil
}

// Child returns a snapshot of the data at the relative path.
func (s Snapshot) Child(path string) (Snapshot, error) {
	segments, err := keypath.Parse(path)
	if err != nil {
		return Snapshot{}, err
	}
	ref := s.ref.childRef(segments)
	return newSnapshot(ref, tree.Get(s.node, segments...), query.Spec{}), nil
}

// HasChild reports whether data exists at the relative path.
func (s Snapshot) HasChild(path string) (bool, error) {
	segments, err := keypath.Parse(path)
	if err != nil {
		return false, err
	}
	return tree.Has(s.node, segments...), nil
}

// HasChildren reports whether the snapshot is a map.
func (s Snapshot) HasChildren() bool {
	return tree.IsMap(s.node)
}

// NumChildren returns the number of direct children.
func (s Snapshot) NumChildren() int {
	return tree.Len(s.node)
}

// ForEach calls fn for every direct child in query order. Iteration stops
// when fn returns true; ForEach then reports true.
func (s Snapshot) ForEach(fn func(child Snapshot) bool) bool {
	for _, key := range query.Children(s.node, s.spec) {
		child := newSnapshot(s.ref.childRef([]string{key}), tree.Get(s.node, key), query.Spec{})
		if fn(child) {
			return true
		}
	}
	return false
}
