package planner

import (
	"github.com/ogkla/mongo/internal/query"
	"github.com/ogkla/mongo/internal/value"
)

// specialOperators names the operators whose semantics are delegated to a
// non-ordinary index (geo); their range degrades to universal but carries
// the Special tag so the caller can pick a specialized index.
var specialOperators = map[query.Operator]bool{
	query.OpNear:   true,
	query.OpWithin: true,
}

// LowerPredicate translates a single field predicate into a FieldRange,
// per §4.2. It does not know about other predicates on the same field;
// LowerFieldPredicates combines several.
func LowerPredicate(field string, p query.Predicate) (FieldRange, error) {
	fr, err := lowerOne(field, p)
	if err != nil {
		return FieldRange{}, err
	}
	if p.Negated {
		fr = fr.Complement()
	}
	return fr, nil
}

// LowerFieldPredicates combines every predicate written against one field
// (within a single conjunctive clause) by intersection.
func LowerFieldPredicates(field string, preds []query.Predicate) (FieldRange, error) {
	fr := Trivial()
	for _, p := range preds {
		next, err := LowerPredicate(field, p)
		if err != nil {
			return FieldRange{}, err
		}
		fr = fr.Intersect(next)
	}
	return fr, nil
}

func lowerOne(field string, p query.Predicate) (FieldRange, error) {
	switch p.Op {
	case query.OpEq:
		return lowerEquality(p.Value), nil

	case query.OpNe:
		return neRange(value.FromInterface(p.Value)), nil

	case query.OpLt:
		v := value.FromInterface(p.Value)
		return IntervalRange(Interval{Lower: LowerMin, Upper: Bound{Value: v, Inclusive: false}}), nil

	case query.OpLte:
		v := value.FromInterface(p.Value)
		return IntervalRange(Interval{Lower: LowerMin, Upper: Bound{Value: v, Inclusive: true}}), nil

	case query.OpGt:
		v := value.FromInterface(p.Value)
		return IntervalRange(Interval{Lower: Bound{Value: v, Inclusive: false}, Upper: UpperMax}), nil

	case query.OpGte:
		v := value.FromInterface(p.Value)
		return IntervalRange(Interval{Lower: Bound{Value: v, Inclusive: true}, Upper: UpperMax}), nil

	case query.OpIn:
		list, ok := p.Value.([]interface{})
		if !ok {
			return FieldRange{}, badOperand(field, "$in requires an array operand")
		}
		fr := EmptyRange()
		for _, item := range list {
			fr = fr.Union(lowerEquality(item))
		}
		return fr, nil

	case query.OpNin:
		list, ok := p.Value.([]interface{})
		if !ok {
			return FieldRange{}, badOperand(field, "$nin requires an array operand")
		}
		fr := Trivial()
		for _, item := range list {
			fr = fr.Intersect(neRange(value.FromInterface(item)))
		}
		return fr, nil

	case query.OpExists:
		want, ok := p.Value.(bool)
		if !ok {
			return FieldRange{}, badOperand(field, "$exists requires a boolean operand")
		}
		if want {
			return Trivial(), nil
		}
		return EmptyRange(), nil

	case query.OpRegex:
		re, ok := p.Value.(query.Regex)
		if !ok {
			return FieldRange{}, badOperand(field, "$regex requires a Regex operand")
		}
		return lowerRegex(re), nil

	case query.OpMod, query.OpType, query.OpSize, query.OpAll, query.OpElemMatch, query.OpNear, query.OpWithin:
		fr := Trivial()
		if specialOperators[p.Op] {
			fr.Special = string(p.Op)
		}
		return fr, nil

	default:
		return FieldRange{}, unknownOperator(field, p.Op)
	}
}

// lowerEquality lowers an equality operand. An array operand matches both
// as equal-to-the-whole-array and equal-to-any-element, so it lowers to
// the union of the whole-array equality and each element's equality.
func lowerEquality(operand interface{}) FieldRange {
	v := value.FromInterface(operand)
	if v.Kind() != value.KindArray {
		return EqualityRange(v)
	}
	fr := EqualityRange(v)
	for _, e := range v.AsArray() {
		fr = fr.Union(EqualityRange(e))
	}
	return fr
}

// neRange builds the (MIN, v) U (v, MAX) range for $ne/$nin.
func neRange(v value.Value) FieldRange {
	below := IntervalRange(Interval{Lower: LowerMin, Upper: Bound{Value: v, Inclusive: false}})
	above := IntervalRange(Interval{Lower: Bound{Value: v, Inclusive: false}, Upper: UpperMax})
	return below.Union(above)
}

// lowerRegex extracts a literal anchored prefix and builds the half-open
// range it covers, plus the exact equality if the whole pattern is literal.
func lowerRegex(re query.Regex) FieldRange {
	prefix, pure := SimpleRegex(re.Pattern, re.Flags)
	if prefix == "" {
		return Trivial()
	}
	end := SimpleRegexEnd(prefix)
	upper := UpperMax
	if end != "" {
		upper = Bound{Value: value.String(end), Inclusive: false}
	}
	fr := IntervalRange(Interval{Lower: Bound{Value: value.String(prefix), Inclusive: true}, Upper: upper})
	if pure {
		fr = fr.Union(EqualityRange(value.String(prefix)))
	}
	return fr
}

// Complement returns the universal range minus fr, used to lower a
// predicate wrapped in $not.
func (fr FieldRange) Complement() FieldRange {
	return Trivial().Difference(fr)
}
