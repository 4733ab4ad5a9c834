package planner

import "testing"

func TestQueryPatternClassifiesFields(t *testing.T) {
	set := NewFieldRangeSet()
	set.SetRange("a", EqualityRange(num(1)))
	set.SetRange("b", closedRange(1, 5))
	set.SetRange("c", IntervalRange(Interval{Lower: LowerMin, Upper: Bound{Value: num(5), Inclusive: true}}))

	p := NewQueryPattern(set, nil)
	q := NewQueryPattern(set, nil)
	if !p.Equal(q) {
		t.Errorf("two patterns built from the same range set should be equal")
	}
}

func TestQueryPatternIgnoresTrivialFields(t *testing.T) {
	withTrivial := NewFieldRangeSet()
	withTrivial.SetRange("a", EqualityRange(num(1)))
	withTrivial.SetRange("untouched", Trivial())

	withoutTrivial := NewFieldRangeSet()
	withoutTrivial.SetRange("a", EqualityRange(num(1)))

	p := NewQueryPattern(withTrivial, nil)
	q := NewQueryPattern(withoutTrivial, nil)
	if !p.Equal(q) {
		t.Errorf("a trivial (unconstrained) field should not affect the fingerprint")
	}
}

func TestQueryPatternDistinguishesKind(t *testing.T) {
	eq := NewFieldRangeSet()
	eq.SetRange("a", EqualityRange(num(1)))

	rangeOnly := NewFieldRangeSet()
	rangeOnly.SetRange("a", closedRange(1, 5))

	p := NewQueryPattern(eq, nil)
	q := NewQueryPattern(rangeOnly, nil)
	if p.Equal(q) {
		t.Errorf("an equality constraint and a two-sided range constraint should produce distinct patterns")
	}
}

func TestQueryPatternSortDirectionNormalized(t *testing.T) {
	set := NewFieldRangeSet()

	ascending := KeyPattern{{Field: "x", Dir: 1}, {Field: "y", Dir: 1}}
	descending := KeyPattern{{Field: "x", Dir: -1}, {Field: "y", Dir: -1}}

	p := NewQueryPattern(set, ascending)
	q := NewQueryPattern(set, descending)
	if !p.Equal(q) {
		t.Errorf("uniformly flipping every sort direction should normalize to the same pattern")
	}

	mixed := KeyPattern{{Field: "x", Dir: 1}, {Field: "y", Dir: -1}}
	r := NewQueryPattern(set, mixed)
	if p.Equal(r) {
		t.Errorf("a relative direction change between components should change the pattern")
	}
}

func TestPatternCacheEviction(t *testing.T) {
	c := NewPatternCache(2)
	setA := NewFieldRangeSet()
	setA.SetRange("a", EqualityRange(num(1)))
	setB := NewFieldRangeSet()
	setB.SetRange("b", EqualityRange(num(2)))
	setC := NewFieldRangeSet()
	setC.SetRange("c", EqualityRange(num(3)))

	pa := NewQueryPattern(setA, nil)
	pb := NewQueryPattern(setB, nil)
	pc := NewQueryPattern(setC, nil)

	c.Put(pa, "plan-a")
	c.Put(pb, "plan-b")
	if _, ok := c.Get(pa); !ok {
		t.Fatalf("plan-a should still be cached")
	}
	// pa is now most-recently-used; inserting pc should evict pb.
	c.Put(pc, "plan-c")
	if _, ok := c.Get(pb); ok {
		t.Errorf("plan-b should have been evicted")
	}
	if _, ok := c.Get(pa); !ok {
		t.Errorf("plan-a should still be cached")
	}
	if _, ok := c.Get(pc); !ok {
		t.Errorf("plan-c should be cached")
	}
}
