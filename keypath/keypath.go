// Package keypath parses and validates slash-separated database paths.
//
// A path is an ordered list of keys. Keys must be non-empty and must not
// contain any of '.', '[', ']', '$', '#' or '/'. The root of the tree is the
// empty path, written "" or "/".
package keypath

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidKey is returned when a key or path contains a forbidden character
// or an empty segment.
var ErrInvalidKey = errors.New("canopy: invalid key, keys must not contain '.', '[', ']', '$', '#' or '/'")

var (
	validSlashedKey = regexp.MustCompile(`^[^.\[\]$#]+$`)
	validKey        = regexp.MustCompile(`^[^.\[\]$#/]+$`)
)

// Separator joins the segments of a path.
const Separator = "/"

// IsValidKey reports whether key is a valid single key, or a valid
// slash-separated path when allowSlash is set.
func IsValidKey(key string, allowSlash bool) bool {
	if allowSlash {
		return validSlashedKey.MatchString(key)
	}
	return validKey.MatchString(key)
}

// Parse splits a path into its keys.
// A single leading and a single trailing slash are ignored; any other empty
// segment makes the path invalid.
func Parse(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	if !IsValidKey(raw, true) {
		return nil, invalid(raw)
	}

	segments := strings.Split(raw, Separator)
	if len(segments) > 0 && segments[0] == "" {
		segments = segments[1:]
	}
	if len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	for _, s := range segments {
		if s == "" {
			return nil, invalid(raw)
		}
	}
	return segments, nil
}

// MustParse is like Parse but panics on an invalid path.
// Use it for constant paths only.
func MustParse(raw string) []string {
	segments, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return segments
}

// Concat parses every fragment independently and concatenates the results.
// A fragment that is invalid on its own fails even when the joined string
// would be a valid path.
func Concat(raws ...string) ([]string, error) {
	result := []string{}
	for _, raw := range raws {
		segments, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, segments...)
	}
	return result, nil
}

// Join renders segments back into path form.
func Join(segments []string) string {
	return strings.Join(segments, Separator)
}

// Child returns a copy of parent with key appended. The result never aliases
// parent's backing array.
func Child(parent []string, key ...string) []string {
	out := make([]string, 0, len(parent)+len(key))
	out = append(out, parent...)
	return append(out, key...)
}

// Last returns the final key of a path, or "" for the root.
func Last(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

func invalid(key string) error {
	return fmt.Errorf("%w: %q", ErrInvalidKey, key)
}
