package planner

import "github.com/ogkla/mongo/internal/value"

// FieldRange is an ordered, disjoint, non-adjacent sequence of intervals
// constraining a single field. A range with zero intervals matches
// nothing; a range holding exactly Universal() matches everything.
//
// Special, when non-empty, marks a range whose semantics (geo, text) the
// planner cannot express as an ordinary interval; such ranges refuse
// Reverse.
type FieldRange struct {
	Intervals []Interval
	Special   string
}

// Trivial returns the universal range (MIN, MAX).
func Trivial() FieldRange {
	return FieldRange{Intervals: []Interval{Universal()}}
}

// EmptyRange returns the range matching no value.
func EmptyRange() FieldRange {
	return FieldRange{}
}

// EqualityRange returns the single-point range [v, v].
func EqualityRange(v value.Value) FieldRange {
	return FieldRange{Intervals: []Interval{Eq(v)}}
}

// IntervalRange wraps a single caller-built interval into a range.
func IntervalRange(iv Interval) FieldRange {
	if iv.Empty() {
		return EmptyRange()
	}
	return FieldRange{Intervals: []Interval{iv}}
}

// Equality reports whether fr is a single equality interval.
func (fr FieldRange) Equality() bool {
	return len(fr.Intervals) == 1 && fr.Intervals[0].IsEquality()
}

// InQuery reports whether fr is wholly an enumerated set of points, i.e.
// every interval is an equality.
func (fr FieldRange) InQuery() bool {
	if len(fr.Intervals) == 0 {
		return false
	}
	for _, iv := range fr.Intervals {
		if !iv.IsEquality() {
			return false
		}
	}
	return true
}

// Nontrivial reports whether fr is neither empty nor the single universal
// interval.
func (fr FieldRange) Nontrivial() bool {
	if len(fr.Intervals) == 0 {
		return false
	}
	if len(fr.Intervals) == 1 {
		iv := fr.Intervals[0]
		if value.Equal(iv.Lower.Value, value.Min) && iv.Lower.Inclusive &&
			value.Equal(iv.Upper.Value, value.Max) && iv.Upper.Inclusive {
			return false
		}
	}
	return true
}

// IsEmpty reports whether fr matches no value at all.
func (fr FieldRange) IsEmpty() bool {
	return len(fr.Intervals) == 0
}

// Min returns the lowest bound's value; panics on an empty range.
func (fr FieldRange) Min() value.Value {
	if len(fr.Intervals) == 0 {
		panic("planner: Min on empty FieldRange")
	}
	return fr.Intervals[0].Lower.Value
}

// Max returns the highest bound's value; panics on an empty range.
func (fr FieldRange) Max() value.Value {
	if len(fr.Intervals) == 0 {
		panic("planner: Max on empty FieldRange")
	}
	return fr.Intervals[len(fr.Intervals)-1].Upper.Value
}

// MinInclusive reports whether the lowest bound includes its value.
func (fr FieldRange) MinInclusive() bool {
	if len(fr.Intervals) == 0 {
		panic("planner: MinInclusive on empty FieldRange")
	}
	return fr.Intervals[0].Lower.Inclusive
}

// MaxInclusive reports whether the highest bound includes its value.
func (fr FieldRange) MaxInclusive() bool {
	if len(fr.Intervals) == 0 {
		panic("planner: MaxInclusive on empty FieldRange")
	}
	return fr.Intervals[len(fr.Intervals)-1].Upper.Inclusive
}

// Intersect returns the intersection of fr and other: the merge of every
// overlapping pair of intervals from the two sorted, disjoint lists.
func (fr FieldRange) Intersect(other FieldRange) FieldRange {
	var out []Interval
	i, j := 0, 0
	for i < len(fr.Intervals) && j < len(other.Intervals) {
		a, b := fr.Intervals[i], other.Intervals[j]
		lo := a.Lower
		if compareLower(b.Lower, lo) > 0 {
			lo = b.Lower
		}
		hi := a.Upper
		if compareUpper(b.Upper, hi) < 0 {
			hi = b.Upper
		}
		cand := Interval{Lower: lo, Upper: hi}
		if !cand.Empty() {
			out = append(out, cand)
		}
		if compareUpper(a.Upper, b.Upper) <= 0 {
			i++
		} else {
			j++
		}
	}
	return FieldRange{Intervals: out, Special: pickSpecial(fr.Special, other.Special)}
}

// Union returns the union of fr and other: a merge-sort by lower bound
// followed by a coalescing sweep.
func (fr FieldRange) Union(other FieldRange) FieldRange {
	merged := mergeByLower(fr.Intervals, other.Intervals)
	if len(merged) == 0 {
		return FieldRange{Special: pickSpecial(fr.Special, other.Special)}
	}

	out := make([]Interval, 0, len(merged))
	running := merged[0]
	for _, next := range merged[1:] {
		if touchesOrOverlaps(running.Upper, next.Lower) {
			if compareUpper(next.Upper, running.Upper) > 0 {
				running.Upper = next.Upper
			}
			continue
		}
		out = append(out, running)
		running = next
	}
	out = append(out, running)
	return FieldRange{Intervals: out, Special: pickSpecial(fr.Special, other.Special)}
}

// Difference subtracts other from fr: each interval of other is cut out of
// the running list, splitting overlapping intervals into up to two
// residuals with inclusivity flipped at the cut.
func (fr FieldRange) Difference(other FieldRange) FieldRange {
	remaining := append([]Interval(nil), fr.Intervals...)
	for _, sub := range other.Intervals {
		remaining = subtractOne(remaining, sub)
	}
	return FieldRange{Intervals: remaining, Special: fr.Special}
}

// Subset reports whether every interval of fr lies inside some interval of
// other. Both lists are sorted, so a single linear merge suffices.
func (fr FieldRange) Subset(other FieldRange) bool {
	j := 0
	for _, a := range fr.Intervals {
		for j < len(other.Intervals) && compareUpper(other.Intervals[j].Upper, a.Upper) < 0 {
			j++
		}
		if j >= len(other.Intervals) {
			return false
		}
		b := other.Intervals[j]
		if compareLower(b.Lower, a.Lower) > 0 || compareUpper(a.Upper, b.Upper) > 0 {
			return false
		}
	}
	return true
}

// Reverse returns fr with its interval order and each interval's endpoints
// reversed, for use when a key-pattern component's direction disagrees
// with the scan direction. Panics if fr carries a Special tag.
func (fr FieldRange) Reverse() FieldRange {
	if fr.Special != "" {
		panic("planner: Reverse on a Special-tagged FieldRange")
	}
	n := len(fr.Intervals)
	out := make([]Interval, n)
	for i, iv := range fr.Intervals {
		out[n-1-i] = iv.reverse()
	}
	return FieldRange{Intervals: out}
}

func pickSpecial(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// mergeByLower merges two already-sorted interval slices into one slice
// sorted by lower bound.
func mergeByLower(a, b []Interval) []Interval {
	out := make([]Interval, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if compareLower(a[i].Lower, b[j].Lower) <= 0 {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// touchesOrOverlaps reports whether an interval ending at upper and one
// starting at lower should coalesce into a single run: their values
// overlap, or they abut at a shared value that at least one side includes.
func touchesOrOverlaps(upper, lower Bound) bool {
	c := value.Compare(lower.Value, upper.Value)
	if c < 0 {
		return true
	}
	if c == 0 {
		return upper.Inclusive || lower.Inclusive
	}
	return false
}

// subtractOne removes sub from every interval in list, splitting each
// overlapping interval into up to two residuals.
func subtractOne(list []Interval, sub Interval) []Interval {
	var out []Interval
	for _, iv := range list {
		if !overlaps(iv, sub) {
			out = append(out, iv)
			continue
		}
		// Low residual: [iv.Lower, sub.Lower) cut exclusive at sub.Lower.
		if compareLower(iv.Lower, sub.Lower) < 0 {
			low := Interval{Lower: iv.Lower, Upper: FlipInclusive(sub.Lower)}
			if !low.Empty() {
				out = append(out, low)
			}
		}
		// High residual: (sub.Upper, iv.Upper] cut exclusive at sub.Upper.
		if compareUpper(sub.Upper, iv.Upper) < 0 {
			high := Interval{Lower: FlipInclusive(sub.Upper), Upper: iv.Upper}
			if !high.Empty() {
				out = append(out, high)
			}
		}
	}
	return out
}
