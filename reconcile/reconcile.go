// Package reconcile computes the difference between two tree roots as a
// nested, pruned tree of changes.
package reconcile

import (
	"fmt"
	"slices"

	"github.com/jacentio/canopy/keypath"
	"github.com/jacentio/canopy/tree"
)

// ChangeType classifies a change at one location.
type ChangeType int

const (
	// Added marks a location that holds data only in the new tree.
	Added ChangeType = iota + 1
	// Changed marks a location whose data differs between the trees.
	Changed
	// Removed marks a location that holds data only in the old tree.
	Removed
)

// String returns the lower-case name of the change type.
func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	}
	return fmt.Sprintf("ChangeType(%d)", int(c))
}

// Change describes what happened at a single location.
type Change struct {
	Type     ChangeType
	Location []string
	Path     string

	// ParentLocation is nil only for the root change.
	ParentLocation []string
	ParentPath     string
}

// HasParent reports whether the change is below the root.
func (c Change) HasParent() bool {
	return c.ParentLocation != nil
}

// ChangeTree is a change plus the changes found below it. Only locations
// that actually differ appear in Children.
type ChangeTree struct {
	Change
	Children map[string]*ChangeTree
}

// Reconcile compares prev and next and returns the tree of changes between
// them, or nil when they are equal. Neither input is modified.
func Reconcile(prev, next tree.Node) *ChangeTree {
	return reconcile(nil, []string{}, prev, next)
}

func reconcile(parent, location []string, prev, next tree.Node) *ChangeTree {
	// 1. Nothing below an equal pair can differ
	if tree.Equal(prev, next) {
		return nil
	}

	// 2. Classify
	ct := &ChangeTree{Change: Change{
		Location: location,
		Path:     keypath.Join(location),
	}}
	switch {
	case prev == nil:
		ct.Type = Added
	case next == nil:
		ct.Type = Removed
	default:
		ct.Type = Changed
	}
	if parent != nil {
		ct.ParentLocation = parent
		ct.ParentPath = keypath.Join(parent)
	}

	prevMap, prevIsMap := prev.(tree.Map)
	nextMap, nextIsMap := next.(tree.Map)

	// 3. Two leaves have nothing below them
	if !prevIsMap && !nextIsMap {
		return ct
	}

	// 4. A one-sided map contributes its whole subtree; 5. two maps
	// contribute the union of their keys
	keys := make(map[string]struct{}, len(prevMap)+len(nextMap))
	for k := range prevMap {
		keys[k] = struct{}{}
	}
	for k := range nextMap {
		keys[k] = struct{}{}
	}

	for k := range keys {
		child := reconcile(location, keypath.Child(location, k), prevMap[k], nextMap[k])
		if child == nil {
			// 6. Prune
			continue
		}
		if ct.Children == nil {
			ct.Children = make(map[string]*ChangeTree)
		}
		ct.Children[k] = child
	}
	return ct
}

// Lookup returns the change at segments relative to ct, or nil when nothing
// changed there.
func (ct *ChangeTree) Lookup(segments ...string) *ChangeTree {
	node := ct
	for _, s := range segments {
		if node == nil {
			return nil
		}
		node = node.Children[s]
	}
	return node
}

// ChildKeys returns the keys of the changed children in lexical order.
func (ct *ChangeTree) ChildKeys() []string {
	if ct == nil {
		return nil
	}
	keys := make([]string, 0, len(ct.Children))
	for k := range ct.Children {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Walk visits every change in pre-order, children in lexical key order.
// Returning false from fn skips the subtree below that change.
func (ct *ChangeTree) Walk(fn func(*ChangeTree) bool) {
	if ct == nil || !fn(ct) {
		return
	}
	for _, k := range ct.ChildKeys() {
		ct.Children[k].Walk(fn)
	}
}

// Len returns the number of changes in the tree.
func (ct *ChangeTree) Len() int {
	n := 0
	ct.Walk(func(*ChangeTree) bool {
		n++
		return true
	})
	return n
}
