// Package planner implements the query constraint and index-bound planner:
// given a predicate tree it computes, per field, the value intervals that
// can satisfy the predicate, combines those intervals across conjunctions
// and disjunctions, and projects the result onto an index key pattern to
// produce the key ranges a sorted-index scan must visit.
package planner

import "github.com/ogkla/mongo/internal/value"

// Bound is one endpoint of an Interval: a value plus whether the endpoint
// itself is included in the interval.
type Bound struct {
	Value     value.Value
	Inclusive bool
}

// LowerMin and UpperMax are the universal interval's endpoints.
var (
	LowerMin = Bound{Value: value.Min, Inclusive: true}
	UpperMax = Bound{Value: value.Max, Inclusive: true}
)

// FlipInclusive returns b with its Inclusive flag toggled; used when
// translating a negated predicate across an endpoint.
func FlipInclusive(b Bound) Bound {
	return Bound{Value: b.Value, Inclusive: !b.Inclusive}
}

// compareLower orders two bounds as lower endpoints of an interval: at
// equal values, an inclusive (closed) lower bound sorts before an
// exclusive one, because it admits the boundary value and so starts no
// later.
func compareLower(a, b Bound) int {
	if c := value.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	switch {
	case a.Inclusive == b.Inclusive:
		return 0
	case a.Inclusive:
		return -1
	default:
		return 1
	}
}

// compareUpper orders two bounds as upper endpoints: at equal values, an
// inclusive upper bound sorts after an exclusive one, because it extends
// one value further.
func compareUpper(a, b Bound) int {
	if c := value.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	switch {
	case a.Inclusive == b.Inclusive:
		return 0
	case a.Inclusive:
		return 1
	default:
		return -1
	}
}

// Interval is a pair of bounds (lower, upper) understood as a closed
// interval modulated by each bound's Inclusive flag.
type Interval struct {
	Lower Bound
	Upper Bound
}

// Universal is the interval (MIN, MAX).
func Universal() Interval {
	return Interval{Lower: LowerMin, Upper: UpperMax}
}

// Eq builds the single-point equality interval [v, v].
func Eq(v value.Value) Interval {
	b := Bound{Value: v, Inclusive: true}
	return Interval{Lower: b, Upper: b}
}

// Empty reports whether iv contains no values: its lower bound exceeds its
// upper bound, or they're equal and at least one side excludes the point.
func (iv Interval) Empty() bool {
	c := value.Compare(iv.Lower.Value, iv.Upper.Value)
	if c > 0 {
		return true
	}
	if c == 0 {
		return !(iv.Lower.Inclusive && iv.Upper.Inclusive)
	}
	return false
}

// IsEquality reports whether iv collapses to a single inclusive point.
func (iv Interval) IsEquality() bool {
	return value.Equal(iv.Lower.Value, iv.Upper.Value) && iv.Lower.Inclusive && iv.Upper.Inclusive
}

// overlaps reports whether a and b share at least one value.
func overlaps(a, b Interval) bool {
	lo := a.Lower
	if compareLower(b.Lower, lo) > 0 {
		lo = b.Lower
	}
	hi := a.Upper
	if compareUpper(b.Upper, hi) < 0 {
		hi = b.Upper
	}
	return !Interval{Lower: lo, Upper: hi}.Empty()
}

// reverse swaps iv's endpoints for use in a reversed (descending) field
// range.
func (iv Interval) reverse() Interval {
	return Interval{
		Lower: Bound{Value: iv.Upper.Value, Inclusive: iv.Upper.Inclusive},
		Upper: Bound{Value: iv.Lower.Value, Inclusive: iv.Lower.Inclusive},
	}
}
