package planner

import (
	"testing"

	"github.com/ogkla/mongo/internal/query"
	"github.com/ogkla/mongo/internal/value"
)

func TestLowerEqualityAndComparison(t *testing.T) {
	fr, err := LowerPredicate("a", query.Predicate{Op: query.OpEq, Value: 5.0})
	if err != nil {
		t.Fatal(err)
	}
	if !fr.Equality() || !value.Equal(fr.Min(), num(5)) {
		t.Errorf("eq 5 should be a single equality interval at 5")
	}

	gt, _ := LowerPredicate("a", query.Predicate{Op: query.OpGt, Value: 5.0})
	if gt.MinInclusive() || !value.Equal(gt.Min(), num(5)) || !gt.Max().IsMax() {
		t.Errorf("gt 5 should be (5, MAX)")
	}

	gte, _ := LowerPredicate("a", query.Predicate{Op: query.OpGte, Value: 5.0})
	if !gte.MinInclusive() {
		t.Errorf("gte 5 should have an inclusive lower bound")
	}
}

func TestLowerNotEqEqualsNe(t *testing.T) {
	notEq, err := LowerPredicate("a", query.Predicate{Op: query.OpEq, Value: 7.0, Negated: true})
	if err != nil {
		t.Fatal(err)
	}
	ne, err := LowerPredicate("a", query.Predicate{Op: query.OpNe, Value: 7.0})
	if err != nil {
		t.Fatal(err)
	}
	if !rangesEqual(notEq, ne) {
		t.Errorf("not(eq v) should equal ne v; got %+v vs %+v", notEq, ne)
	}
}

func TestLowerInEqualsUnionOfEq(t *testing.T) {
	in, err := LowerPredicate("a", query.Predicate{Op: query.OpIn, Value: []interface{}{1.0, 2.0, 3.0}})
	if err != nil {
		t.Fatal(err)
	}
	union := EqualityRange(num(1)).Union(EqualityRange(num(2))).Union(EqualityRange(num(3)))
	if !rangesEqual(in, union) {
		t.Errorf("in [1,2,3] should equal the union of eq 1, eq 2, eq 3")
	}
}

func TestLowerNinEqualsIntersectionOfNe(t *testing.T) {
	nin, err := LowerPredicate("a", query.Predicate{Op: query.OpNin, Value: []interface{}{1.0, 2.0}})
	if err != nil {
		t.Fatal(err)
	}
	intersection := neRange(num(1)).Intersect(neRange(num(2)))
	if !rangesEqual(nin, intersection) {
		t.Errorf("nin [1,2] should equal the intersection of ne 1 and ne 2")
	}
}

func TestLowerArrayEqualityMatchesWholeAndElements(t *testing.T) {
	arr := []interface{}{1.0, 2.0}
	fr, err := LowerPredicate("a", query.Predicate{Op: query.OpEq, Value: arr})
	if err != nil {
		t.Fatal(err)
	}
	whole := value.FromInterface(arr)
	if !valueInRangeForTest(whole, fr) {
		t.Errorf("array equality should match the whole array")
	}
	if !valueInRangeForTest(num(1), fr) || !valueInRangeForTest(num(2), fr) {
		t.Errorf("array equality should also match each element")
	}
}

func valueInRangeForTest(v value.Value, fr FieldRange) bool {
	for _, iv := range fr.Intervals {
		if valueInInterval(v, iv) {
			return true
		}
	}
	return false
}

func TestLowerExists(t *testing.T) {
	yes, _ := LowerPredicate("a", query.Predicate{Op: query.OpExists, Value: true})
	if !rangesEqual(yes, Trivial()) {
		t.Errorf("exists:true should be universal")
	}
	no, _ := LowerPredicate("a", query.Predicate{Op: query.OpExists, Value: false})
	if !no.IsEmpty() {
		t.Errorf("exists:false should be empty")
	}
}

func TestLowerDegradeOperators(t *testing.T) {
	for _, op := range []query.Operator{query.OpMod, query.OpType, query.OpSize, query.OpAll, query.OpElemMatch} {
		fr, err := LowerPredicate("a", query.Predicate{Op: op, Value: 1.0})
		if err != nil {
			t.Fatal(err)
		}
		if fr.Nontrivial() || fr.Special != "" {
			t.Errorf("%s should degrade to a plain universal range", op)
		}
	}
	near, err := LowerPredicate("a", query.Predicate{Op: query.OpNear, Value: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if near.Special != string(query.OpNear) {
		t.Errorf("$near should carry a Special tag")
	}
}

func TestLowerRegexPrefix(t *testing.T) {
	fr, err := LowerPredicate("a", query.Predicate{Op: query.OpRegex, Value: query.Regex{Pattern: "^foo"}})
	if err != nil {
		t.Fatal(err)
	}
	if !valueInRangeForTest(value.String("foo"), fr) || !valueInRangeForTest(value.String("foobar"), fr) {
		t.Errorf("^foo prefix range should match foo and foobar")
	}
	if valueInRangeForTest(value.String("fop"), fr) {
		t.Errorf("^foo prefix range should not match fop")
	}

	pure, err := LowerPredicate("a", query.Predicate{Op: query.OpRegex, Value: query.Regex{Pattern: "^foo$"}})
	if err != nil {
		t.Fatal(err)
	}
	if !valueInRangeForTest(value.String("foo"), pure) {
		t.Errorf("^foo$ should match the exact literal")
	}
}

func TestLowerFieldPredicatesIntersects(t *testing.T) {
	fr, err := LowerFieldPredicates("b", []query.Predicate{
		{Op: query.OpGt, Value: 2.0},
		{Op: query.OpLte, Value: 5.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if fr.MinInclusive() || value.Compare(fr.Min(), num(2)) != 0 {
		t.Errorf("expected exclusive lower bound at 2")
	}
	if !fr.MaxInclusive() || value.Compare(fr.Max(), num(5)) != 0 {
		t.Errorf("expected inclusive upper bound at 5")
	}
}
