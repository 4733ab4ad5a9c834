package planner

import (
	"testing"

	"github.com/ogkla/mongo/internal/query"
)

func mustParse(t *testing.T, q map[string]interface{}) query.Node {
	t.Helper()
	n, err := query.Parse(q)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestLowerFieldRangeSetConjunction(t *testing.T) {
	root := mustParse(t, map[string]interface{}{
		"a": map[string]interface{}{"$gt": 1.0, "$lte": 10.0},
		"b": "x",
	})
	set, err := LowerFieldRangeSet(root)
	if err != nil {
		t.Fatal(err)
	}
	if !set.HasField("a") || !set.HasField("b") {
		t.Fatalf("expected a and b in the range set, got %v", set.Fields())
	}
	if !set.Range("b").Equality() {
		t.Errorf("b should be an equality range")
	}
	if set.Range("c").Nontrivial() {
		t.Errorf("unconstrained field c should report trivial")
	}
}

func TestLowerFieldRangeSetNestedAnd(t *testing.T) {
	root := mustParse(t, map[string]interface{}{
		"$and": []interface{}{
			map[string]interface{}{"a": map[string]interface{}{"$gte": 1.0}},
			map[string]interface{}{"a": map[string]interface{}{"$lte": 5.0}},
		},
	})
	set, err := LowerFieldRangeSet(root)
	if err != nil {
		t.Fatal(err)
	}
	a := set.Range("a")
	if !rangesEqual(a, closedRange(1, 5)) {
		t.Errorf("nested $and should intersect into [1,5], got %+v", a)
	}
}

func TestFieldRangeSetIntersectAndSubset(t *testing.T) {
	s1 := NewFieldRangeSet()
	s1.SetRange("a", closedRange(1, 10))
	s1.SetRange("b", closedRange(0, 100))

	s2 := NewFieldRangeSet()
	s2.SetRange("a", closedRange(5, 20))

	merged := s1.Intersect(s2)
	if !rangesEqual(merged.Range("a"), closedRange(5, 10)) {
		t.Errorf("intersect should narrow a to [5,10]")
	}
	if !rangesEqual(merged.Range("b"), closedRange(0, 100)) {
		t.Errorf("intersect should carry through b unchanged")
	}

	sub := merged.Subset([]string{"a"})
	if sub.HasField("b") {
		t.Errorf("Subset([a]) should drop b")
	}
}

func TestFieldRangeSetMatchPossible(t *testing.T) {
	s := NewFieldRangeSet()
	s.SetRange("a", closedRange(1, 10))
	if !s.MatchPossible() {
		t.Errorf("nonempty ranges should leave a match possible")
	}
	s.SetRange("b", EmptyRange())
	if s.MatchPossible() {
		t.Errorf("an empty field range should make a match impossible")
	}
}

func TestFieldRangeSetDifferenceNearlyContained(t *testing.T) {
	s := NewFieldRangeSet()
	s.SetRange("a", closedRange(1, 10))

	// Every field of other present in s and fully a subset: result on that
	// field becomes empty (case diffCount == 0).
	contained := NewFieldRangeSet()
	contained.SetRange("a", closedRange(0, 20))
	diff0 := s.Difference(contained)
	if !diff0.Range("a").IsEmpty() {
		t.Errorf("subtracting a superset should leave the field empty")
	}

	// Exactly one field not fully contained: that field alone is subtracted.
	partial := NewFieldRangeSet()
	partial.SetRange("a", closedRange(1, 4))
	diff1 := s.Difference(partial)
	assertInvariants(t, diff1.Range("a"))
	want := closedRange(1, 10).Difference(closedRange(1, 4))
	if !rangesEqual(diff1.Range("a"), want) {
		t.Errorf("difference should remove the subtracted subrange: got %+v, want %+v", diff1.Range("a"), want)
	}

	// other names a field absent from s: s is returned unchanged.
	other := NewFieldRangeSet()
	other.SetRange("z", closedRange(1, 2))
	diff2 := s.Difference(other)
	if !rangesEqual(diff2.Range("a"), s.Range("a")) {
		t.Errorf("difference against an unrelated field should be a no-op")
	}
}

func TestFieldRangeSetSimplifiedQuery(t *testing.T) {
	s := NewFieldRangeSet()
	s.SetRange("a", EqualityRange(num(3)))
	s.SetRange("b", closedRange(1, 5))

	simplified := s.SimplifiedQuery(nil)
	if simplified["a"] != 3.0 {
		t.Errorf("equality field should simplify to the bare value, got %v", simplified["a"])
	}
	bDoc, ok := simplified["b"].(map[string]interface{})
	if !ok {
		t.Fatalf("range field should simplify to an operator document, got %T", simplified["b"])
	}
	if bDoc["$gte"] != 1.0 || bDoc["$lte"] != 5.0 {
		t.Errorf("unexpected simplified bounds: %v", bDoc)
	}
}
