package bundoc

import (
	"github.com/ogkla/mongo/internal/planner"
	"github.com/ogkla/mongo/internal/value"
	"github.com/ogkla/mongo/storage"
)

// encodeCompositePrefix renders vals as the sortable composite byte
// prefix a secondary index stores: each component encoded by
// value.EncodeComponent with its pattern-declared sort sign, so that
// bytewise order over the concatenation matches the index's declared
// (field, direction) order -- the only order storage.BPlusTree.RangeScan
// understands.
func encodeCompositePrefix(pattern planner.KeyPattern, vals []value.Value) []byte {
	var buf []byte
	for i, comp := range pattern {
		buf = append(buf, value.EncodeComponent(vals[i], comp.Dir)...)
	}
	return buf
}

// encodeCompositeKey appends a document's id to its composite prefix, so
// two documents that share every indexed value still occupy distinct
// keys instead of overwriting one another.
func encodeCompositeKey(pattern planner.KeyPattern, doc storage.Document, id string) []byte {
	buf := encodeCompositePrefix(pattern, fieldValues(pattern, doc))
	buf = append(buf, 0x00)
	buf = append(buf, []byte(id)...)
	return buf
}

// boundaryEnd pads a composite prefix with a single 0xff byte so an
// inclusive byte-range scan's upper bound also covers every id suffix a
// matching key may carry (document ids are ASCII and so always sort
// below 0xff).
func boundaryEnd(pattern planner.KeyPattern, vals []value.Value) []byte {
	return append(encodeCompositePrefix(pattern, vals), 0xff)
}

// fieldValues reads pattern's fields off doc as typed planner values, in
// pattern order -- the shape planner.Iterator.AdvanceTo expects for the
// key it just read off a scan.
func fieldValues(pattern planner.KeyPattern, doc storage.Document) []value.Value {
	out := make([]value.Value, len(pattern))
	for i, comp := range pattern {
		out[i] = value.FromInterface(doc[comp.Field])
	}
	return out
}

// seekTarget builds the byte key planner.Iterator's skip instruction
// names: currKey's first r components, followed by the seek-target value
// the iterator names for component r (Cmp(r)), followed by a sentinel for
// every later component chosen so the composed key sorts at or before
// (an inclusive landing) or strictly past (an exclusive landing, when
// it.After() is set) anything the interval starting at Cmp(r) could
// contain. The sentinel per trailing component depends on that
// component's declared direction: EncodeComponent bit-complements a
// descending component's bytes, which inverts which of value.Min/
// value.Max encodes to the higher raw byte.
//
// When r lands on the last pattern component there are no trailing
// components left to carry the exclusion, and the real key on disk still
// has a 0x00-plus-id suffix after the shared prefix -- a strict prefix of
// that key sorts below it no matter how Cmp(r) is encoded. A trailing
// 0xff byte, which no component encoding itself begins with, pushes the
// seek strictly past that suffix too.
func seekTarget(pattern planner.KeyPattern, currKey []value.Value, it *planner.Iterator, r int) []byte {
	seek := make([]value.Value, len(pattern))
	copy(seek, currKey)
	seek[r] = it.Cmp(r)

	after := it.After()
	for i := r + 1; i < len(pattern); i++ {
		seek[i] = trailingSentinel(pattern[i].Dir, after)
	}

	key := encodeCompositePrefix(pattern, seek)
	if after && r == len(pattern)-1 {
		key = append(key, 0xff)
	}
	return key
}

// trailingSentinel returns the component value whose EncodeComponent
// bytes sort past every real value a trailing component could hold (when
// after is true) or at-or-before every real value (when after is false),
// accounting for the bit-complement EncodeComponent applies to a
// descending (dir < 0) component.
func trailingSentinel(dir int, after bool) value.Value {
	if dir < 0 {
		after = !after
	}
	if after {
		return value.Max
	}
	return value.Min
}
