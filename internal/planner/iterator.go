package planner

import "github.com/ogkla/mongo/internal/value"

// Instruction codes returned by Iterator.AdvanceTo.
const (
	// Done signals iteration is complete: currKey exceeds the last
	// reachable interval.
	Done = -2
	// Continue signals currKey lies inside the current multi-interval
	// box; the scan should continue to the next sorted key unassisted.
	Continue = -1
)

// Iterator walks a FieldRangeVector's cross-product in sorted-key order,
// telling a scanning cursor where to jump to skip gaps between matching
// intervals. It borrows its parent vector and must not outlive it.
type Iterator struct {
	v   *FieldRangeVector
	idx []int // per-component cursor into v.ranges[i].Intervals

	// Scratch populated by the most recent AdvanceTo call that returned a
	// seek instruction (r >= 0): that call sets cmp[r] and inc[r] only, so
	// the compound key to seek to is the first r components of currKey
	// followed by cmp[r] (inclusivity inc[r]); entries past r are not
	// updated.
	cmp     []value.Value
	inc     []bool
	after   bool
	started bool // whether Advance has produced its first combination
}

// NewIterator returns an Iterator over v, with all cursors at the first
// interval of each component.
func (v *FieldRangeVector) NewIterator() *Iterator {
	k := len(v.ranges)
	return &Iterator{
		v:   v,
		idx: make([]int, k),
		cmp: make([]value.Value, k),
		inc: make([]bool, k),
	}
}

// Cmp returns the seek-target value for component i, valid after an
// AdvanceTo call returned r == i.
func (it *Iterator) Cmp(i int) value.Value { return it.cmp[i] }

// Inc returns the seek-target inclusivity for component i.
func (it *Iterator) Inc(i int) bool { return it.inc[i] }

// After reports whether the most recent seek instruction requires landing
// strictly past the composed key.
func (it *Iterator) After() bool { return it.after }

// Advance is the cursorless walk over the vector's cross-product: it
// increments the last component's cursor, rolling forward into the
// previous component on overflow and zeroing the tail. It returns false
// once the leading component is exhausted. The first call lands on the
// all-zero combination without incrementing anything.
func (it *Iterator) Advance() bool {
	k := len(it.idx)
	if !it.started {
		it.started = true
		for i := 0; i < k; i++ {
			if len(it.v.ranges[i].Intervals) == 0 {
				return false
			}
		}
		return true
	}
	for i := k - 1; i >= 0; i-- {
		it.idx[i]++
		if it.idx[i] < len(it.v.ranges[i].Intervals) {
			for j := i + 1; j < k; j++ {
				it.idx[j] = 0
			}
			return true
		}
		it.idx[i] = 0
		if i == 0 {
			return false
		}
	}
	return false
}

// AdvanceTo is the core scan-skipping decision, given the key currKey just
// read off a sorted cursor (per §4.7):
//
//   - Done: iteration is complete.
//   - Continue: currKey lies inside the box; keep scanning unassisted.
//   - r >= 0: seek to the compound key formed by currKey's first r
//     components followed by Cmp(r) (inclusivity from Inc(r)); Cmp and
//     Inc of later components are not set by this call. If After() is
//     set, the seek must land strictly past that key.
func (it *Iterator) AdvanceTo(currKey []value.Value) int {
	it.after = false
	k := len(it.v.ranges)

	i := 0
	for i < k {
		intervals := it.v.ranges[i].Intervals
		dir := it.v.dirs[i]

		for it.idx[i] < len(intervals) && dir*value.Compare(intervals[it.idx[i]].Upper.Value, currKey[i]) < 0 {
			it.idx[i]++
		}
		if it.idx[i] >= len(intervals) {
			return it.rollParent(i)
		}

		cand := intervals[it.idx[i]]
		cmpLower := dir * value.Compare(currKey[i], cand.Lower.Value)
		cmpUpper := dir * value.Compare(cand.Upper.Value, currKey[i])

		switch {
		case cmpLower < 0:
			it.cmp[i], it.inc[i] = cand.Lower.Value, cand.Lower.Inclusive
			it.after = false
			return i
		case cmpLower == 0 && !cand.Lower.Inclusive:
			it.cmp[i], it.inc[i] = cand.Lower.Value, cand.Lower.Inclusive
			it.after = true
			return i
		case cmpUpper == 0 && !cand.Upper.Inclusive:
			it.idx[i]++
			// Re-examine component i from its new cursor position.
			continue
		default:
			i++
		}
	}
	return Continue
}

// rollParent implements step 2 of §4.7: component i has exhausted its
// intervals, so some ancestor component must advance to its next
// interval. If no ancestor has one, iteration is Done.
func (it *Iterator) rollParent(i int) int {
	p := i - 1
	for p >= 0 {
		it.idx[p]++
		if it.idx[p] < len(it.v.ranges[p].Intervals) {
			break
		}
		it.idx[p] = 0
		p--
	}
	if p < 0 {
		return Done
	}
	for j := p + 1; j < len(it.idx); j++ {
		it.idx[j] = 0
	}
	next := it.v.ranges[p].Intervals[it.idx[p]]
	it.cmp[p], it.inc[p] = next.Lower.Value, next.Lower.Inclusive
	it.after = false
	return p
}
