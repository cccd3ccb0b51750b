package store

import (
	"fmt"
	"slices"

	"github.com/jacentio/canopy/keypath"
	"github.com/jacentio/canopy/tree"
)

// Reference addresses a location in a Store. It holds only the path and
// the store, so it stays valid whatever happens to the data.
type Reference struct {
	Query
}

// Key returns the last segment of the location, or "" for the root.
func (r *Reference) Key() string {
	return keypath.Last(r.path)
}

// Parent returns the reference one level up, or nil for the root.
func (r *Reference) Parent() *Reference {
	if len(r.path) == 0 {
		return nil
	}
	return r.store.reference(r.path[:len(r.path)-1])
}

// Root returns the reference to the root of the tree.
func (r *Reference) Root() *Reference {
	return r.store.reference([]string{})
}

// Child returns a reference to path relative to r.
func (r *Reference) Child(path string) (*Reference, error) {
	segments, err := keypath.Parse(path)
	if err != nil {
		return nil, err
	}
	return r.childRef(segments), nil
}

func (r *Reference) childRef(segments []string) *Reference {
	return r.store.reference(keypath.Child(r.path, segments...))
}

// Set replaces the data at the location. A nil value removes it.
func (r *Reference) Set(value any) error {
	return r.store.write("set", r.path, func(root tree.Node) (tree.Node, error) {
		return tree.Set(root, value, r.path)
	})
}

// Remove deletes the data at the location.
func (r *Reference) Remove() error {
	return r.store.write("remove", r.path, func(root tree.Node) (tree.Node, error) {
		return tree.Delete(root, r.path), nil
	})
}

// Update writes several descendants in one commit. Keys are paths relative
// to r and may contain slashes; a nil value deletes its path. Listeners see
// a single change. No path may be an ancestor of another.
func (r *Reference) Update(values map[string]any) error {
	// 1. Parse every path and reject overlaps
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	paths := make([][]string, 0, len(keys))
	for _, k := range keys {
		segments, err := keypath.Parse(k)
		if err != nil {
			return err
		}
		if len(segments) == 0 {
			return fmt.Errorf("%w: %q", keypath.ErrInvalidKey, k)
		}
		paths = append(paths, segments)
	}
	for i := range paths {
		for j := i + 1; j < len(paths); j++ {
			if isAncestor(paths[i], paths[j]) || isAncestor(paths[j], paths[i]) {
				return fmt.Errorf("%w: %q and %q", ErrOverlappingUpdate,
					keypath.Join(paths[i]), keypath.Join(paths[j]))
			}
		}
	}

	// 2. Validate the payload as one tree, keeping nils as delete markers
	payload, err := tree.ValidateDataTree(values, tree.ValidateOptions{KeepNulls: true})
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	// 3. Apply every path to one working root
	return r.store.write("update", r.path, func(root tree.Node) (tree.Node, error) {
		for _, segments := range paths {
			target := keypath.Child(r.path, segments...)
			value := tree.Get(payload, segments...)
			if value == nil {
				root = tree.Delete(root, target)
				continue
			}
			var err error
			if root, err = tree.Set(root, value, target); err != nil {
				return nil, err
			}
		}
		return root, nil
	})
}

// isAncestor reports whether a is a proper or equal prefix of b.
func isAncestor(a, b []string) bool {
	return len(a) <= len(b) && slices.Equal(a, b[:len(a)])
}

// Push creates a child with a new time-ordered key and writes value to it.
// With a nil value only the reference is returned.
func (r *Reference) Push(value any) (*Reference, error) {
	key, err := r.store.pushIDs.Next()
	if err != nil {
		return nil, fmt.Errorf("generate push key: %w", err)
	}
	child := r.childRef([]string{key})
	if value == nil {
		return child, nil
	}

	err = r.store.write("push", child.path, func(root tree.Node) (tree.Node, error) {
		return tree.Set(root, value, child.path)
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// TransactionFunc receives the current data as plain Go values and returns
// the data to store. Returning false aborts the transaction.
type TransactionFunc func(current any) (next any, commit bool)

// Transaction applies update to the current data. It reports whether the
// transaction committed and returns a snapshot of the resulting data.
func (r *Reference) Transaction(update TransactionFunc) (bool, Snapshot, error) {
	next, ok := update(tree.Export(tree.Get(r.store.root, r.path...)))
	if !ok {
		return false, r.Get(), nil
	}
	err := r.store.write("transaction", r.path, func(root tree.Node) (tree.Node, error) {
		return tree.Set(root, next, r.path)
	})
	if err != nil {
		return false, Snapshot{}, err
	}
	return true, r.Get(), nil
}

// SetPriority always fails: priorities are not supported.
func (r *Reference) SetPriority(priority any) error {
	return fmt.Errorf("%w: setPriority", ErrUnimplemented)
}

// SetWithPriority always fails: priorities are not supported.
func (r *Reference) SetWithPriority(value, priority any) error {
	return fmt.Errorf("%w: setWithPriority", ErrUnimplemented)
}
