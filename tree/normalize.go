package tree

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/jacentio/canopy/keypath"
)

// ValidateOptions configures ValidateDataTree.
type ValidateOptions struct {
	// KeepNulls preserves nil children instead of stripping them, so that a
	// caller can treat them as explicit delete markers.
	KeepNulls bool
}

// NormalizeForStorage converts value into tree form without sanitizing it:
// arrays become maps keyed by their decimal index, numbers become float64
// and nil children are kept. It fails with ErrUndefinedNotAllowed if
// Undefined appears anywhere in value.
func NormalizeForStorage(value any) (Node, error) {
	return normalize(value, func(m Map, key string, child Node) error {
		m[key] = child
		return nil
	}, false)
}

// ValidateDataTree sanitizes a write payload. In addition to the conversions
// done by NormalizeForStorage it:
//
//  1. rejects keys that are not valid keys or slash-separated paths
//  2. expands slashed keys into nested maps ({"a/b": 1} -> {"a": {"b": 1}})
//  3. strips nil children, unless opts.KeepNulls is set
//  4. collapses maps left empty to nil
//
// Two keys that address the same location, or a slashed key that passes
// through a sibling's scalar, fail with keypath.ErrInvalidKey.
func ValidateDataTree(value any, opts ValidateOptions) (Node, error) {
	insert := func(m Map, key string, child Node) error {
		if !keypath.IsValidKey(key, true) {
			return fmt.Errorf("%w: %q", keypath.ErrInvalidKey, key)
		}
		if child == nil && !opts.KeepNulls {
			return nil
		}
		segments, err := keypath.Parse(key)
		if err != nil {
			return err
		}
		if !mergeAt(m, segments, child) {
			return fmt.Errorf("%w: %q conflicts with another key", keypath.ErrInvalidKey, key)
		}
		return nil
	}
	return normalize(value, insert, true)
}

// inserter places a normalized child under key in a map that is still
// being built.
type inserter func(m Map, key string, child Node) error

func normalize(value any, insert inserter, collapse bool) (Node, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case undefined:
		return nil, ErrUndefinedNotAllowed
	case bool:
		return v, nil
	case string:
		return v, nil
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
		}
		return finite(f)
	case Map:
		return normalizeEntries(len(v), func(fn func(string, any) error) error {
			for _, k := range sortedKeys(v) {
				if err := fn(k, v[k]); err != nil {
					return err
				}
			}
			return nil
		}, insert, collapse)
	case map[string]any:
		return normalizeEntries(len(v), func(fn func(string, any) error) error {
			for _, k := range sortedKeys(v) {
				if err := fn(k, v[k]); err != nil {
					return err
				}
			}
			return nil
		}, insert, collapse)
	case []any:
		return normalizeEntries(len(v), func(fn func(string, any) error) error {
			for i, item := range v {
				if err := fn(strconv.Itoa(i), item); err != nil {
					return err
				}
			}
			return nil
		}, insert, collapse)
	}

	return normalizeReflect(value, insert, collapse)
}

// normalizeReflect handles typed maps and slices such as map[string]string
// or []int.
func normalizeReflect(value any, insert inserter, collapse bool) (Node, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return normalize(rv.Elem().Interface(), insert, collapse)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s", ErrUnsupportedType, rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return normalizeEntries(len(keys), func(fn func(string, any) error) error {
			for _, k := range keys {
				child := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
				if err := fn(k, child.Interface()); err != nil {
					return err
				}
			}
			return nil
		}, insert, collapse)
	case reflect.Slice, reflect.Array:
		return normalizeEntries(rv.Len(), func(fn func(string, any) error) error {
			for i := 0; i < rv.Len(); i++ {
				if err := fn(strconv.Itoa(i), rv.Index(i).Interface()); err != nil {
					return err
				}
			}
			return nil
		}, insert, collapse)
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float())
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, value)
}

func normalizeEntries(size int, each func(func(string, any) error) error, insert inserter, collapse bool) (Node, error) {
	out := make(Map, size)
	err := each(func(key string, raw any) error {
		child, err := normalize(raw, insert, collapse)
		if err != nil {
			return err
		}
		return insert(out, key, child)
	})
	if err != nil {
		return nil, err
	}
	if collapse && len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// mergeAt writes child at segments below m, merging into maps that already
// exist. m and every map below it must still be under construction. It
// reports false when the write would replace or pass through data already
// placed by another key.
func mergeAt(m Map, segments []string, child Node) bool {
	key := segments[0]
	existing, present := m[key]
	if len(segments) == 1 {
		if !present {
			m[key] = child
			return true
		}
		existingMap, isMap := existing.(Map)
		incoming, incomingMap := child.(Map)
		if !isMap || !incomingMap {
			return false
		}
		for _, k := range sortedKeys(incoming) {
			if !mergeAt(existingMap, []string{k}, incoming[k]) {
				return false
			}
		}
		return true
	}
	if !present {
		next := Map{}
		m[key] = next
		return mergeAt(next, segments[1:], child)
	}
	next, ok := existing.(Map)
	if !ok {
		return false
	}
	return mergeAt(next, segments[1:], child)
}

func finite(f float64) (Node, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite number %v", ErrUnsupportedType, f)
	}
	return f, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
