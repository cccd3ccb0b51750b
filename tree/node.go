// Package tree implements the persistent data tree behind a canopy database.
//
// A tree node is one of:
//
//   - nil (null, the absence of data)
//   - bool
//   - float64
//   - string
//   - [Map], a non-empty mapping from key to node
//
// Published nodes are never mutated. Every write returns a new root that
// shares the untouched branches of the previous root, so readers holding an
// older root are unaffected by later writes.
package tree

// Node is a value stored in the tree. See the package documentation for the
// set of dynamic types a normalized Node may hold.
type Node = any

// Map is an interior node. A published Map is never empty and is never
// modified in place.
type Map map[string]Node

type undefined struct{}

// Undefined marks a value that was never assigned. Writes containing it
// anywhere fail with ErrUndefinedNotAllowed.
var Undefined any = undefined{}

// IsMap reports whether n is an interior node.
func IsMap(n Node) bool {
	_, ok := n.(Map)
	return ok
}

// Keys returns the keys of n in unspecified order, or nil when n is not a Map.
func Keys(n Node) []string {
	m, ok := n.(Map)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of children of n.
func Len(n Node) int {
	m, ok := n.(Map)
	if !ok {
		return 0
	}
	return len(m)
}

// Export converts n into plain Go values: maps become map[string]any and
// scalars are returned as is. The result shares nothing with n.
func Export(n Node) any {
	m, ok := n.(Map)
	if !ok {
		return n
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Export(v)
	}
	return out
}
