package bundoc

import (
	"bytes"
	"testing"

	"github.com/ogkla/mongo/internal/planner"
	"github.com/ogkla/mongo/internal/value"
)

func TestEncodeCompositePrefixOrdersAscending(t *testing.T) {
	pattern := planner.KeyPattern{{Field: "n", Dir: 1}}

	low := encodeCompositePrefix(pattern, []value.Value{value.Number(1)})
	high := encodeCompositePrefix(pattern, []value.Value{value.Number(2)})

	if bytes.Compare(low, high) >= 0 {
		t.Errorf("expected encoded 1 < encoded 2, got %v vs %v", low, high)
	}
}

func TestEncodeCompositePrefixReversesDescending(t *testing.T) {
	pattern := planner.KeyPattern{{Field: "n", Dir: -1}}

	low := encodeCompositePrefix(pattern, []value.Value{value.Number(1)})
	high := encodeCompositePrefix(pattern, []value.Value{value.Number(2)})

	if bytes.Compare(low, high) <= 0 {
		t.Errorf("expected descending component to reverse byte order, got %v vs %v", low, high)
	}
}

func TestEncodeCompositeKeyDistinguishesSharedValues(t *testing.T) {
	pattern := planner.KeyPattern{{Field: "category", Dir: 1}}

	doc1 := map[string]interface{}{"category": "a"}
	doc2 := map[string]interface{}{"category": "a"}

	k1 := encodeCompositeKey(pattern, doc1, "1")
	k2 := encodeCompositeKey(pattern, doc2, "2")

	if bytes.Equal(k1, k2) {
		t.Error("expected composite keys for documents sharing an indexed value to differ by id")
	}
}

func TestBoundaryEndCoversIDSuffixes(t *testing.T) {
	pattern := planner.KeyPattern{{Field: "category", Dir: 1}}
	vals := []value.Value{value.String("a")}

	key := encodeCompositeKey(pattern, map[string]interface{}{"category": "a"}, "anything")
	end := boundaryEnd(pattern, vals)

	if bytes.Compare(key, end) > 0 {
		t.Errorf("expected composite key %v to fall at or below its boundary end %v", key, end)
	}
}

func TestSeekTargetClearsExclusiveLowerBoundOnLeadingComponent(t *testing.T) {
	set := planner.NewFieldRangeSet()
	set.SetRange("a", planner.IntervalRange(planner.Interval{
		Lower: planner.Bound{Value: value.Number(5), Inclusive: false},
		Upper: planner.UpperMax,
	}))
	pattern := planner.KeyPattern{{Field: "a", Dir: 1}, {Field: "b", Dir: 1}}
	vec, err := planner.NewFieldRangeVector(set, pattern, 1)
	if err != nil {
		t.Fatal(err)
	}
	it := vec.NewIterator()

	boundaryKey := []value.Value{value.Number(5), value.Number(10)}
	r := it.AdvanceTo(boundaryKey)
	if r != 0 || !it.After() {
		t.Fatalf("expected an After seek instruction for component 0, got r=%d after=%v", r, it.After())
	}

	seek := seekTarget(pattern, boundaryKey, it, r)
	boundaryStored := encodeCompositeKey(pattern, map[string]interface{}{"a": 5.0, "b": 10.0}, "boundary")
	if bytes.Compare(seek, boundaryStored) <= 0 {
		t.Errorf("expected seek %v to sort past the boundary document's key %v", seek, boundaryStored)
	}

	// Any sibling sharing a == 5 must also sort below the seek target,
	// regardless of its b value: After on component 0 must skip the
	// whole a == 5 interval, not just the one boundary key.
	sibling := encodeCompositeKey(pattern, map[string]interface{}{"a": 5.0, "b": 999999.0}, "sibling")
	if bytes.Compare(seek, sibling) <= 0 {
		t.Errorf("expected seek %v to sort past every a==5 sibling %v", seek, sibling)
	}
}

func TestFieldValuesReadsPatternFieldsInOrder(t *testing.T) {
	pattern := planner.KeyPattern{{Field: "a", Dir: 1}, {Field: "b", Dir: 1}}
	doc := map[string]interface{}{"a": 1.0, "b": "x"}

	vals := fieldValues(pattern, doc)
	if len(vals) != 2 {
		t.Fatalf("expected 2 values, got %d", len(vals))
	}
	if value.Compare(vals[0], value.Number(1)) != 0 {
		t.Errorf("expected first value to be 1, got %v", vals[0])
	}
	if value.Compare(vals[1], value.String("x")) != 0 {
		t.Errorf("expected second value to be %q, got %v", "x", vals[1])
	}
}
