package query_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jacentio/canopy/query"
	"github.com/jacentio/canopy/tree"
)

func must(t *testing.T) func(query.Spec, error) query.Spec {
	return func(s query.Spec, err error) query.Spec {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error building spec: %v", err)
		}
		return s
	}
}

func byValue(t *testing.T) query.Spec {
	return must(t)(query.Spec{}.OrderByValue())
}

func byChild(t *testing.T, path string) query.Spec {
	return must(t)(query.Spec{}.OrderByChild(path))
}

func between(t *testing.T, s query.Spec, min, max any, hasMin, hasMax bool) query.Spec {
	t.Helper()
	var err error
	if hasMin {
		if s, err = s.StartAt(min); err != nil {
			t.Fatalf("StartAt(%v): %v", min, err)
		}
	}
	if hasMax {
		if s, err = s.EndAt(max); err != nil {
			t.Fatalf("EndAt(%v): %v", max, err)
		}
	}
	return s
}

// --- ordering ---

func TestCompareKeys(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"100", "200", -1},
		{"200", "100a", -1},
		{"100a", "200", 1},
		{"Foo", "key", -1},
		{"9", "10", -1},
		{"a", "a", 0},
		{"4294967296", "a", -1}, // exceeds 32 bits, compared as a string
		{"4294967295", "0", 1},
		{"4294967295", "4294967296", -1},
	}

	for _, tt := range tests {
		if result := query.CompareKeys(tt.a, tt.b); result != tt.expected {
			t.Errorf("CompareKeys(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
		}
	}
}

func TestCompareValues_Transitive(t *testing.T) {
	ordered := []tree.Node{nil, false, true, -1.5, 0.0, 100.0, "", "a", "b", tree.Map{"x": 1.0}}
	for i := range ordered {
		for j := range ordered {
			result := query.CompareValues(ordered[i], ordered[j])
			switch {
			case i < j && result >= 0:
				t.Errorf("expected %v < %v, got %d", ordered[i], ordered[j], result)
			case i > j && result <= 0:
				t.Errorf("expected %v > %v, got %d", ordered[i], ordered[j], result)
			case i == j && result != 0:
				t.Errorf("expected %v == %v, got %d", ordered[i], ordered[j], result)
			}
		}
	}
}

// --- Children ---

func TestChildren_NonMaps(t *testing.T) {
	for _, n := range []tree.Node{nil, true, "str", 42.0} {
		if result := query.Children(n, query.Spec{}); len(result) != 0 || result == nil {
			t.Errorf("expected empty non-nil result for %v, got %#v", n, result)
		}
	}
}

func TestChildren_ByKey(t *testing.T) {
	tests := []struct {
		name     string
		node     tree.Map
		expected []string
	}{
		{"single", tree.Map{"key": "value"}, []string{"key"}},
		{"integers first", tree.Map{"100a": "string", "200": "number"}, []string{"200", "100a"}},
		{"uppercase first", tree.Map{"key": "value", "Foo": "bar"}, []string{"Foo", "key"}},
		{"numeric order", tree.Map{"200": "bar", "100": "value"}, []string{"100", "200"}},
		{"letters", tree.Map{"b": "foo", "a": "bar"}, []string{"a", "b"}},
		{"mixed", tree.Map{"and": "y", "100": "x"}, []string{"100", "and"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := query.Children(tt.node, query.Spec{})
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Children mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChildren_FilterByKey(t *testing.T) {
	node := tree.Map{"100": "next", "and": "value", "foo": "value", "fooBar": "value", "or": "value"}

	tests := []struct {
		name           string
		min, max       any
		hasMin, hasMax bool
		expected       []string
	}{
		{"no filter", nil, nil, false, false, []string{"100", "and", "foo", "fooBar", "or"}},
		{"min string", "foo", nil, true, false, []string{"foo", "fooBar", "or"}},
		{"max string", nil, "foo\uf8ff", false, true, []string{"100", "and", "foo", "fooBar"}},
		{"prefix", "foo", "foo\uf8ff", true, true, []string{"foo", "fooBar"}},
		{"min numeric", 200, nil, true, false, []string{"and", "foo", "fooBar", "or"}},
		{"max numeric", nil, 200, false, true, []string{"100"}},
		{"numeric range", 150, 300, true, true, []string{}},
		{"inclusive numeric", 100, 100, true, true, []string{"100"}},
		{"null min keeps all", nil, nil, true, false, []string{"100", "and", "foo", "fooBar", "or"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := between(t, query.Spec{}, tt.min, tt.max, tt.hasMin, tt.hasMax)
			result := query.Children(node, spec)
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Children mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChildren_ByValue(t *testing.T) {
	tests := []struct {
		name     string
		node     tree.Map
		expected []string
	}{
		{
			name:     "cross type",
			node:     tree.Map{"a": tree.Map{"foo": "bar"}, "b": 100.0, "c": true, "d": "value", "e": false, "f": nil},
			expected: []string{"f", "e", "c", "b", "d", "a"},
		},
		{"numbers", tree.Map{"b": 100.0, "a": 200.0}, []string{"b", "a"}},
		{"null tie", tree.Map{"b": nil, "a": nil}, []string{"a", "b"}},
		{"false tie", tree.Map{"b": false, "a": false}, []string{"a", "b"}},
		{"true tie", tree.Map{"b": true, "a": true}, []string{"a", "b"}},
		{"number tie", tree.Map{"c": 100.0, "b": 200.0, "a": 100.0}, []string{"a", "c", "b"}},
		{"string tie", tree.Map{"c": "bar", "b": "foo", "a": "bar"}, []string{"a", "c", "b"}},
		{"object tie", tree.Map{"b": tree.Map{"foo": "bar"}, "a": tree.Map{"foo": "bar"}}, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := query.Children(tt.node, byValue(t))
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Children mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChildren_ByChild(t *testing.T) {
	tests := []struct {
		name     string
		node     tree.Map
		expected []string
	}{
		{
			name: "cross type",
			node: tree.Map{
				"a": tree.Map{"foo": "bar", "value": tree.Map{"nested": "tree"}},
				"b": tree.Map{"value": 100.0},
				"c": tree.Map{"value": true},
				"d": tree.Map{"value": "value"},
				"e": tree.Map{"value": false},
				"f": tree.Map{"foo": "bar"},
			},
			expected: []string{"f", "e", "c", "b", "d", "a"},
		},
		{"missing ties", tree.Map{"b": tree.Map{"foo": "bar"}, "a": tree.Map{"nested": "tree"}}, []string{"a", "b"}},
		{
			name:     "number tie",
			node:     tree.Map{"c": tree.Map{"value": 100.0}, "b": tree.Map{"value": 200.0}, "a": tree.Map{"value": 100.0}},
			expected: []string{"a", "c", "b"},
		},
		{
			name:     "string tie",
			node:     tree.Map{"c": tree.Map{"value": "bar"}, "b": tree.Map{"value": "foo"}, "a": tree.Map{"value": "bar"}},
			expected: []string{"a", "c", "b"},
		},
		{"scalar children", tree.Map{"a": 1.0, "b": tree.Map{"value": 0.0}}, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := query.Children(tt.node, byChild(t, "value"))
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Children mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// filterCases run against both value and child ordering. Results are in
// query order.
var filterCases = []struct {
	name           string
	min, max       any
	hasMin, hasMax bool
	expected       []string
}{
	{"no filter", nil, nil, false, false, []string{"f", "e", "c", "b", "h", "g", "d", "a"}},
	{"min null", nil, nil, true, false, []string{"f", "e", "c", "b", "h", "g", "d", "a"}},
	{"max null", nil, nil, false, true, []string{"f"}},
	{"both null", nil, nil, true, true, []string{"f"}},
	{"min false", false, nil, true, false, []string{"e", "c", "b", "h", "g", "d", "a"}},
	{"max false", nil, false, false, true, []string{"f", "e"}},
	{"both false", false, false, true, true, []string{"e"}},
	{"min true", true, nil, true, false, []string{"c", "b", "h", "g", "d", "a"}},
	{"max true", nil, true, false, true, []string{"f", "e", "c"}},
	{"both true", true, true, true, true, []string{"c"}},
	{"min number", 150, nil, true, false, []string{"h", "g", "d", "a"}},
	{"max number", nil, 150, false, true, []string{"f", "e", "c", "b"}},
	{"number range", 100, 200, true, true, []string{"b", "h"}},
	{"min string", "try", nil, true, false, []string{"d", "a"}},
	{"max string", nil, "try", false, true, []string{"f", "e", "c", "b", "h", "g"}},
	{"string range", "merry", "value", true, true, []string{"g", "d"}},
}

func TestChildren_FilterByValue(t *testing.T) {
	node := tree.Map{
		"a": tree.Map{"foo": "bar"},
		"b": 100.0,
		"c": true,
		"d": "value",
		"e": false,
		"f": nil,
		"g": "merry",
		"h": 200.0,
	}

	for _, tt := range filterCases {
		t.Run(tt.name, func(t *testing.T) {
			spec := between(t, byValue(t), tt.min, tt.max, tt.hasMin, tt.hasMax)
			result := query.Children(node, spec)
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Children mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChildren_FilterByChild(t *testing.T) {
	node := tree.Map{
		"a": tree.Map{"foo": tree.Map{"sec": tree.Map{"value": "bar"}}},
		"b": tree.Map{"foo": tree.Map{"sec": 100.0}},
		"c": tree.Map{"foo": tree.Map{"sec": true}},
		"d": tree.Map{"foo": tree.Map{"sec": "value"}},
		"e": tree.Map{"foo": tree.Map{"sec": false}},
		"f": tree.Map{"car": "ferrari"},
		"g": tree.Map{"foo": tree.Map{"sec": "merry"}},
		"h": tree.Map{"foo": tree.Map{"sec": 200.0}},
	}

	for _, tt := range filterCases {
		t.Run(tt.name, func(t *testing.T) {
			spec := between(t, byChild(t, "foo/sec"), tt.min, tt.max, tt.hasMin, tt.hasMax)
			result := query.Children(node, spec)
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Children mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChildren_Limit(t *testing.T) {
	node := tree.Map{"a": 1.0, "b": 2.0, "c": 3.0, "d": 4.0, "e": 5.0, "f": 6.0, "g": 7.0}

	first := must(t)(query.Spec{}.LimitToFirst(3))
	if diff := cmp.Diff([]string{"a", "b", "c"}, query.Children(node, first)); diff != "" {
		t.Errorf("first mismatch (-want +got):\n%s", diff)
	}

	last := must(t)(query.Spec{}.LimitToLast(3))
	if diff := cmp.Diff([]string{"e", "f", "g"}, query.Children(node, last)); diff != "" {
		t.Errorf("last mismatch (-want +got):\n%s", diff)
	}

	large := must(t)(query.Spec{}.LimitToLast(100))
	if n := len(query.Children(node, large)); n != 7 {
		t.Errorf("expected 7 children, got %d", n)
	}

	zero := must(t)(query.Spec{}.LimitToFirst(0))
	if n := len(query.Children(node, zero)); n != 0 {
		t.Errorf("expected 0 children, got %d", n)
	}
}

func TestChildren_LimitAppliesAfterOrdering(t *testing.T) {
	node := tree.Map{"a": 3.0, "b": 1.0, "c": 2.0}
	spec := must(t)(byValue(t).LimitToLast(2))

	if diff := cmp.Diff([]string{"c", "a"}, query.Children(node, spec)); diff != "" {
		t.Errorf("Children mismatch (-want +got):\n%s", diff)
	}
}

// --- builders ---

func TestSpec_DuplicateFacets(t *testing.T) {
	s := must(t)(query.Spec{}.OrderByKey())
	if _, err := s.OrderByValue(); !errors.Is(err, query.ErrDuplicateOrdering) {
		t.Errorf("expected ErrDuplicateOrdering, got %v", err)
	}
	if _, err := s.OrderByChild("a"); !errors.Is(err, query.ErrDuplicateOrdering) {
		t.Errorf("expected ErrDuplicateOrdering, got %v", err)
	}

	s = must(t)(s.LimitToFirst(1))
	if _, err := s.LimitToLast(1); !errors.Is(err, query.ErrDuplicateLimit) {
		t.Errorf("expected ErrDuplicateLimit, got %v", err)
	}
}

func TestSpec_InvalidArguments(t *testing.T) {
	if _, err := (query.Spec{}).LimitToFirst(-1); !errors.Is(err, query.ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := (query.Spec{}).StartAt(map[string]any{"a": 1}); !errors.Is(err, query.ErrInvalidBound) {
		t.Errorf("expected ErrInvalidBound, got %v", err)
	}
	if _, err := (query.Spec{}).EqualTo(tree.Undefined); !errors.Is(err, tree.ErrUndefinedNotAllowed) {
		t.Errorf("expected ErrUndefinedNotAllowed, got %v", err)
	}
	if _, err := (query.Spec{}).OrderByChild("a.b"); err == nil {
		t.Error("expected error for invalid child path")
	}
}

func TestSpec_BuildersDoNotShareState(t *testing.T) {
	base := must(t)(query.Spec{}.StartAt(1))
	narrowed := must(t)(base.EndAt(5))

	if base.Filter.HasMax {
		t.Error("EndAt modified the receiver's filter")
	}
	if !narrowed.Filter.HasMin || narrowed.Filter.Min != 1.0 {
		t.Errorf("expected narrowed spec to keep its lower bound, got %+v", narrowed.Filter)
	}
}

func TestSpec_Equal(t *testing.T) {
	tests := []struct {
		name     string
		a, b     func(t *testing.T) query.Spec
		expected bool
	}{
		{
			name:     "zero and explicit key",
			a:        func(t *testing.T) query.Spec { return query.Spec{} },
			b:        func(t *testing.T) query.Spec { return must(t)(query.Spec{}.OrderByKey()) },
			expected: true,
		},
		{
			name:     "same child path",
			a:        func(t *testing.T) query.Spec { return byChild(t, "a/b") },
			b:        func(t *testing.T) query.Spec { return byChild(t, "/a/b/") },
			expected: true,
		},
		{
			name:     "different child path",
			a:        func(t *testing.T) query.Spec { return byChild(t, "a") },
			b:        func(t *testing.T) query.Spec { return byChild(t, "b") },
			expected: false,
		},
		{
			name:     "int and float bounds",
			a:        func(t *testing.T) query.Spec { return must(t)(byValue(t).EqualTo(3)) },
			b:        func(t *testing.T) query.Spec { return must(t)(byValue(t).EqualTo(3.0)) },
			expected: true,
		},
		{
			name:     "null bound is not unset",
			a:        func(t *testing.T) query.Spec { return must(t)(byValue(t).StartAt(nil)) },
			b:        byValue,
			expected: false,
		},
		{
			name:     "different limits",
			a:        func(t *testing.T) query.Spec { return must(t)(query.Spec{}.LimitToFirst(2)) },
			b:        func(t *testing.T) query.Spec { return must(t)(query.Spec{}.LimitToLast(2)) },
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.a(t).Equal(tt.b(t)); result != tt.expected {
				t.Errorf("Equal = %v, want %v", result, tt.expected)
			}
		})
	}
}
