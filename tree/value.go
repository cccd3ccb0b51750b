package tree

// Get walks segments down from root. It returns nil as soon as a segment is
// missing or a non-map node is reached before the path is exhausted.
func Get(root Node, segments ...string) Node {
	n := root
	for _, key := range segments {
		m, ok := n.(Map)
		if !ok {
			return nil
		}
		if n, ok = m[key]; !ok {
			return nil
		}
	}
	return n
}

// Has reports whether a non-nil node exists at segments.
func Has(root Node, segments ...string) bool {
	return Get(root, segments...) != nil
}

// Set returns a new root with value written at segments. The value is
// sanitized with ValidateDataTree first; if it normalizes to nil the node at
// segments is deleted instead. root is never modified.
func Set(root Node, value any, segments []string) (Node, error) {
	v, err := ValidateDataTree(value, ValidateOptions{})
	if err != nil {
		return root, err
	}
	if v == nil {
		return Delete(root, segments), nil
	}
	return put(root, segments, v), nil
}

// Delete returns a new root without the node at segments. Ancestors left
// empty by the removal are deleted as well, up to the first ancestor that
// still has children. Deleting a missing path returns root unchanged.
func Delete(root Node, segments []string) Node {
	if Get(root, segments...) == nil {
		return root
	}
	return remove(root, segments)
}

// put copies the maps along segments and replaces the node at the end of
// the path. Scalars and nils crossed on the way are replaced by new maps.
func put(n Node, segments []string, v Node) Node {
	if len(segments) == 0 {
		return v
	}
	m, _ := n.(Map)
	key := segments[0]
	out := make(Map, len(m)+1)
	for k, child := range m {
		out[k] = child
	}
	out[key] = put(m[key], segments[1:], v)
	return out
}

// remove assumes the node at segments exists.
func remove(n Node, segments []string) Node {
	if len(segments) == 0 {
		return nil
	}
	m := n.(Map)
	key := segments[0]
	child := remove(m[key], segments[1:])
	if child == nil && len(m) == 1 {
		return nil
	}
	out := make(Map, len(m))
	for k, c := range m {
		if k != key {
			out[k] = c
		}
	}
	if child != nil {
		out[key] = child
	}
	return out
}
