// Package query computes the ordered, filtered and limited children of a
// tree node.
//
// A [Spec] describes one query: how children are ordered (by key, by value,
// or by the value at a path under each child), optional inclusive bounds,
// and an optional limit to the first or last N results. Specs are values:
// every builder method returns a new Spec and leaves the receiver untouched.
package query

import (
	"fmt"
	"log/slog"

	"github.com/jacentio/canopy/keypath"
	"github.com/jacentio/canopy/tree"
)

// OrderBy selects the projection children are ordered by.
type OrderBy int

const (
	// ByKey orders children by key, integer keys first.
	ByKey OrderBy = iota
	// ByValue orders children by their own value.
	ByValue
	// ByChild orders children by the value at a path below each child.
	ByChild
)

// String returns a short name for the ordering.
func (o OrderBy) String() string {
	switch o {
	case ByKey:
		return "key"
	case ByValue:
		return "value"
	case ByChild:
		return "child"
	}
	return fmt.Sprintf("OrderBy(%d)", int(o))
}

// Order is the ordering facet of a Spec.
type Order struct {
	By OrderBy

	// Path is the location under each child used by ByChild.
	Path []string
}

// Filter holds inclusive bounds. A bound is only applied when its Has flag
// is set, since nil is itself a valid bound.
type Filter struct {
	Min    tree.Node
	HasMin bool
	Max    tree.Node
	HasMax bool
}

// LimitBy selects which end of the ordering a limit keeps.
type LimitBy int

const (
	// First keeps the first Amount children.
	First LimitBy = iota + 1
	// Last keeps the last Amount children.
	Last
)

// String returns a short name for the limit end.
func (l LimitBy) String() string {
	switch l {
	case First:
		return "first"
	case Last:
		return "last"
	}
	return fmt.Sprintf("LimitBy(%d)", int(l))
}

// Limit is the limiting facet of a Spec.
type Limit struct {
	By     LimitBy
	Amount int
}

// Spec describes a child query. The zero Spec orders by key with no filter
// and no limit. Nil facets are unset.
type Spec struct {
	Order  *Order
	Filter *Filter
	Limit  *Limit
}

// OrderBy returns the effective ordering.
func (s Spec) OrderBy() Order {
	if s.Order == nil {
		return Order{By: ByKey}
	}
	return *s.Order
}

// OrderByKey orders children by key.
func (s Spec) OrderByKey() (Spec, error) {
	return s.withOrder(Order{By: ByKey})
}

// OrderByValue orders children by their value.
func (s Spec) OrderByValue() (Spec, error) {
	return s.withOrder(Order{By: ByValue})
}

// OrderByChild orders children by the value found at path under each child.
func (s Spec) OrderByChild(path string) (Spec, error) {
	segments, err := keypath.Parse(path)
	if err != nil {
		return s, err
	}
	return s.withOrder(Order{By: ByChild, Path: segments})
}

func (s Spec) withOrder(o Order) (Spec, error) {
	if s.Order != nil {
		return s, ErrDuplicateOrdering
	}
	s.Order = &o
	return s, nil
}

// StartAt sets the inclusive lower bound.
func (s Spec) StartAt(value any) (Spec, error) {
	b, err := bound(value)
	if err != nil {
		return s, err
	}
	f := s.filter()
	f.Min, f.HasMin = b, true
	s.Filter = &f
	return s, nil
}

// EndAt sets the inclusive upper bound.
func (s Spec) EndAt(value any) (Spec, error) {
	b, err := bound(value)
	if err != nil {
		return s, err
	}
	f := s.filter()
	f.Max, f.HasMax = b, true
	s.Filter = &f
	return s, nil
}

// EqualTo sets both bounds to value.
func (s Spec) EqualTo(value any) (Spec, error) {
	b, err := bound(value)
	if err != nil {
		return s, err
	}
	s.Filter = &Filter{Min: b, HasMin: true, Max: b, HasMax: true}
	return s, nil
}

// LimitToFirst keeps only the first amount children.
func (s Spec) LimitToFirst(amount int) (Spec, error) {
	return s.withLimit(Limit{By: First, Amount: amount})
}

// LimitToLast keeps only the last amount children.
func (s Spec) LimitToLast(amount int) (Spec, error) {
	return s.withLimit(Limit{By: Last, Amount: amount})
}

func (s Spec) withLimit(l Limit) (Spec, error) {
	if s.Limit != nil {
		return s, ErrDuplicateLimit
	}
	if l.Amount < 0 {
		return s, fmt.Errorf("%w: %d", ErrInvalidLimit, l.Amount)
	}
	s.Limit = &l
	return s, nil
}

// filter returns a copy of the current filter so the receiver's pointer is
// never written through.
func (s Spec) filter() Filter {
	if s.Filter == nil {
		return Filter{}
	}
	return *s.Filter
}

func bound(value any) (tree.Node, error) {
	n, err := tree.NormalizeForStorage(value)
	if err != nil {
		return nil, err
	}
	if tree.IsMap(n) {
		return nil, ErrInvalidBound
	}
	return n, nil
}

// Equal reports whether two specs select the same children in the same order.
func (s Spec) Equal(other Spec) bool {
	a, b := s.OrderBy(), other.OrderBy()
	if a.By != b.By || keypath.Join(a.Path) != keypath.Join(b.Path) {
		return false
	}

	fa, fb := s.filter(), other.filter()
	if fa.HasMin != fb.HasMin || fa.HasMax != fb.HasMax {
		return false
	}
	if fa.HasMin && !tree.Equal(fa.Min, fb.Min) {
		return false
	}
	if fa.HasMax && !tree.Equal(fa.Max, fb.Max) {
		return false
	}

	if (s.Limit == nil) != (other.Limit == nil) {
		return false
	}
	return s.Limit == nil || *s.Limit == *other.Limit
}

// LogValue implements slog.LogValuer.
func (s Spec) LogValue() slog.Value {
	o := s.OrderBy()
	attrs := []slog.Attr{slog.String("orderBy", o.By.String())}
	if o.By == ByChild {
		attrs = append(attrs, slog.String("path", keypath.Join(o.Path)))
	}
	if s.Filter != nil {
		if s.Filter.HasMin {
			attrs = append(attrs, slog.Any("startAt", s.Filter.Min))
		}
		if s.Filter.HasMax {
			attrs = append(attrs, slog.Any("endAt", s.Filter.Max))
		}
	}
	if s.Limit != nil {
		attrs = append(attrs, slog.String("limit", s.Limit.By.String()), slog.Int("amount", s.Limit.Amount))
	}
	return slog.GroupValue(attrs...)
}
