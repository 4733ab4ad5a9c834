package planner

import "github.com/ogkla/mongo/internal/value"

// MaxProjectionSize bounds the cross-product size a FieldRangeVector may
// produce, guarding against combinatorial blow-up from large $in clauses.
// internal/config may lower or raise it at startup; it is otherwise never
// mutated during planning.
var MaxProjectionSize = 1_000_000

// KeyPatternField is one component of an index key pattern: a field name
// and its sort sign (+1 ascending, -1 descending).
type KeyPatternField struct {
	Field string
	Dir   int
}

// KeyPattern is an ordered index key pattern.
type KeyPattern []KeyPatternField

// Fields returns the pattern's field names in key-pattern order.
func (k KeyPattern) Fields() []string {
	out := make([]string, len(k))
	for i, c := range k {
		out[i] = c.Field
	}
	return out
}

// KeyRange is one (start, end) compound-key pair a sorted-index scan must
// visit.
type KeyRange struct {
	Start []value.Value
	End   []value.Value
}

// BoundList is an ordered list of KeyRanges, the planner's output to a
// storage engine's range scanner.
type BoundList []KeyRange

// FieldRangeVector projects a FieldRangeSet onto an index key pattern for
// a given scan direction: one FieldRange per key-pattern component,
// reversed when the component's sort sign disagrees with the scan
// direction.
type FieldRangeVector struct {
	pattern KeyPattern
	dir     int
	ranges  []FieldRange
	dirs    []int // per-component sign: +1 if this component's stored
	// interval order/orientation already matches the scan's numeric
	// value order, -1 if it was reversed (so "Lower"/"Upper" hold
	// scan-start/scan-end, which may be numerically inverted).
	size int
}

// NewFieldRangeVector builds the projection of frs onto pattern, scanned
// in direction dir (+1 or -1). It fails once the resulting cross-product
// reaches MaxProjectionSize.
func NewFieldRangeVector(frs *FieldRangeSet, pattern KeyPattern, dir int) (*FieldRangeVector, error) {
	ranges := make([]FieldRange, len(pattern))
	dirs := make([]int, len(pattern))
	size := 1
	for i, comp := range pattern {
		forward := (comp.Dir * dir) > 0
		fr := frs.Range(comp.Field)
		if forward {
			dirs[i] = 1
		} else {
			dirs[i] = -1
			fr = fr.Reverse()
		}
		ranges[i] = fr
		size *= len(fr.Intervals)
		if size >= MaxProjectionSize {
			return nil, combinatorialLimitExceeded(size)
		}
	}
	return &FieldRangeVector{pattern: pattern, dir: dir, ranges: ranges, dirs: dirs, size: size}, nil
}

// Size reports the cross-product count: the number of compound keys the
// projection covers.
func (v *FieldRangeVector) Size() int { return v.size }

// IsEmpty reports whether any component's projected range has no
// intervals, making the whole projection match nothing.
func (v *FieldRangeVector) IsEmpty() bool { return v.size == 0 }

// StartKey concatenates the lower bound of the first interval of each
// component, in scan order.
func (v *FieldRangeVector) StartKey() []value.Value {
	out := make([]value.Value, len(v.ranges))
	for i, fr := range v.ranges {
		if fr.IsEmpty() {
			panic("planner: StartKey on empty FieldRangeVector")
		}
		out[i] = fr.Intervals[0].Lower.Value
	}
	return out
}

// EndKey concatenates the upper bound of the last interval of each
// component, in scan order.
func (v *FieldRangeVector) EndKey() []value.Value {
	out := make([]value.Value, len(v.ranges))
	for i, fr := range v.ranges {
		if fr.IsEmpty() {
			panic("planner: EndKey on empty FieldRangeVector")
		}
		out[i] = fr.Intervals[len(fr.Intervals)-1].Upper.Value
	}
	return out
}

// BoundRange describes one component's interval bounds for explain output.
type BoundRange struct {
	Lower value.Value
	Upper value.Value
}

// Obj reports, per key-pattern field, the list of [lower, upper] interval
// pairs projected onto it -- the planner's explain-output surface.
func (v *FieldRangeVector) Obj() map[string][]BoundRange {
	out := make(map[string][]BoundRange, len(v.pattern))
	for i, comp := range v.pattern {
		fr := v.ranges[i]
		pairs := make([]BoundRange, len(fr.Intervals))
		for j, iv := range fr.Intervals {
			pairs[j] = BoundRange{Lower: iv.Lower.Value, Upper: iv.Upper.Value}
		}
		out[comp.Field] = pairs
	}
	return out
}

// Matches reports whether doc's indexed field values all fall within their
// projected ranges. It is used to suppress duplicate documents produced by
// more than one $or clause's projection.
func (v *FieldRangeVector) Matches(doc map[string]interface{}) bool {
	for i, comp := range v.pattern {
		val, ok := doc[comp.Field]
		if !ok {
			return false
		}
		if !valueInRange(value.FromInterface(val), v.ranges[i]) {
			return false
		}
	}
	return true
}

// BoundList enumerates the projection's cross-product as an ordered list
// of compound (start, end) key pairs, the first key-pattern component
// varying slowest.
func (v *FieldRangeVector) BoundList() BoundList {
	combos := cartesianIntervals(v.ranges)
	out := make(BoundList, 0, len(combos))
	for _, combo := range combos {
		start := make([]value.Value, len(combo))
		end := make([]value.Value, len(combo))
		for i, iv := range combo {
			start[i] = iv.Lower.Value
			end[i] = iv.Upper.Value
		}
		out = append(out, KeyRange{Start: start, End: end})
	}
	return out
}

func valueInRange(v value.Value, fr FieldRange) bool {
	for _, iv := range fr.Intervals {
		if valueInInterval(v, iv) {
			return true
		}
	}
	return false
}

// valueInInterval tests membership without assuming Lower.Value <=
// Upper.Value: a reversed projection component swaps the whole bound pairs
// so that Lower/Upper mean scan-start/scan-end rather than min/max.
func valueInInterval(v value.Value, iv Interval) bool {
	lo, hi := iv.Lower, iv.Upper
	if value.Compare(lo.Value, hi.Value) > 0 {
		lo, hi = hi, lo
	}
	loCmp := value.Compare(v, lo.Value)
	if loCmp < 0 || (loCmp == 0 && !lo.Inclusive) {
		return false
	}
	hiCmp := value.Compare(v, hi.Value)
	if hiCmp > 0 || (hiCmp == 0 && !hi.Inclusive) {
		return false
	}
	return true
}

// cartesianIntervals returns every combination of one interval per range,
// ranges[0] varying slowest.
func cartesianIntervals(ranges []FieldRange) [][]Interval {
	if len(ranges) == 0 {
		return [][]Interval{{}}
	}
	tails := cartesianIntervals(ranges[1:])
	out := make([][]Interval, 0, len(ranges[0].Intervals)*len(tails))
	for _, iv := range ranges[0].Intervals {
		for _, tail := range tails {
			combo := make([]Interval, 0, len(tail)+1)
			combo = append(combo, iv)
			combo = append(combo, tail...)
			out = append(out, combo)
		}
	}
	return out
}
