package query

import (
	"slices"
	"strings"

	"github.com/jacentio/canopy/tree"
)

// Children returns the keys of node's direct children selected by spec, in
// query order. Null and scalar nodes have no children. The result is
// recomputed on every call.
func Children(node tree.Node, spec Spec) []string {
	m, ok := node.(tree.Map)
	if !ok {
		return []string{}
	}

	order := spec.OrderBy()
	project := func(key string) tree.Node {
		return tree.Get(m[key], order.Path...)
	}

	// 1. Filter with the same projection the ordering uses
	keys := make([]string, 0, len(m))
	for key := range m {
		if spec.admits(order, key, project) {
			keys = append(keys, key)
		}
	}

	// 2. Order
	if order.By == ByKey {
		slices.SortFunc(keys, CompareKeys)
	} else {
		slices.SortFunc(keys, func(a, b string) int {
			if c := CompareValues(project(a), project(b)); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		})
	}

	// 3. Limit
	if spec.Limit != nil {
		amount := min(spec.Limit.Amount, len(keys))
		if spec.Limit.By == Last {
			keys = keys[len(keys)-amount:]
		} else {
			keys = keys[:amount]
		}
	}
	return keys
}

// admits applies the inclusive bounds of s to one child.
func (s Spec) admits(order Order, key string, project func(string) tree.Node) bool {
	if s.Filter == nil {
		return true
	}
	f := s.Filter

	if order.By == ByKey {
		if f.HasMin && compareKeyBound(f.Min, key) > 0 {
			return false
		}
		if f.HasMax && compareKeyBound(f.Max, key) < 0 {
			return false
		}
		return true
	}

	v := project(key)
	if f.HasMin && CompareValues(f.Min, v) > 0 {
		return false
	}
	if f.HasMax && CompareValues(v, f.Max) > 0 {
		return false
	}
	return true
}
