package planner

import (
	"sort"

	"github.com/ogkla/mongo/internal/query"
	"github.com/ogkla/mongo/internal/value"
)

// FieldRangeSet maps field name to FieldRange for one conjunctive clause.
// A field absent from the map has the trivial (universal) range.
type FieldRangeSet struct {
	ranges map[string]FieldRange
}

// NewFieldRangeSet returns an empty set (every field trivial).
func NewFieldRangeSet() *FieldRangeSet {
	return &FieldRangeSet{ranges: make(map[string]FieldRange)}
}

// LowerFieldRangeSet walks the top-level conjuncts of a parsed predicate
// tree and builds the FieldRangeSet for its non-disjunctive part. $or/$nor
// children are skipped here; OrSet construction pulls them out separately.
func LowerFieldRangeSet(root query.Node) (*FieldRangeSet, error) {
	set := NewFieldRangeSet()
	logical, ok := root.(*query.LogicalNode)
	if !ok {
		return set, nil
	}
	for _, child := range logical.Children {
		switch n := child.(type) {
		case *query.FieldNode:
			fr, err := LowerFieldPredicates(n.Field, n.Predicates)
			if err != nil {
				return nil, err
			}
			set.ranges[n.Field] = set.Range(n.Field).Intersect(fr)
		case *query.LogicalNode:
			if n.Op == query.LogicalAnd {
				sub, err := LowerFieldRangeSet(n)
				if err != nil {
					return nil, err
				}
				set = set.Intersect(sub)
			}
			// $or / $nor children are left for the OrSet driver.
		}
	}
	return set, nil
}

// Range returns the range for field, or the trivial range if unconstrained.
func (s *FieldRangeSet) Range(field string) FieldRange {
	if fr, ok := s.ranges[field]; ok {
		return fr
	}
	return Trivial()
}

// HasField reports whether field has an explicit (possibly trivial) entry.
func (s *FieldRangeSet) HasField(field string) bool {
	_, ok := s.ranges[field]
	return ok
}

// SetRange installs fr as the range for field.
func (s *FieldRangeSet) SetRange(field string, fr FieldRange) {
	s.ranges[field] = fr
}

// Fields returns the set's explicit field names in sorted order.
func (s *FieldRangeSet) Fields() []string {
	out := make([]string, 0, len(s.ranges))
	for f := range s.ranges {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Clone returns a shallow copy of s (FieldRange values are themselves
// immutable, so sharing their interval slices is safe).
func (s *FieldRangeSet) Clone() *FieldRangeSet {
	out := NewFieldRangeSet()
	for f, fr := range s.ranges {
		out.ranges[f] = fr
	}
	return out
}

// Intersect returns a new set: for fields present in both, the ranges are
// intersected; for fields only in other, they are copied in.
func (s *FieldRangeSet) Intersect(other *FieldRangeSet) *FieldRangeSet {
	out := s.Clone()
	for f, fr := range other.ranges {
		if existing, ok := out.ranges[f]; ok {
			out.ranges[f] = existing.Intersect(fr)
		} else {
			out.ranges[f] = fr
		}
	}
	return out
}

// Difference implements the "nearly contained" subtraction used by
// disjunction de-duplication (§4.3): if other names a field absent from s,
// or more than one field differs, s is returned unchanged; if exactly one
// field's range is not a subset of other's, that field alone is subtracted;
// if every field is already contained, the result matches nothing.
func (s *FieldRangeSet) Difference(other *FieldRangeSet) *FieldRangeSet {
	for f := range other.ranges {
		if !s.HasField(f) {
			return s.Clone()
		}
	}

	fields := make([]string, 0, len(other.ranges))
	for f := range other.ranges {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	diffCount := 0
	diffField := ""
	for _, f := range fields {
		if !s.Range(f).Subset(other.Range(f)) {
			diffCount++
			diffField = f
			if diffCount > 1 {
				break
			}
		}
	}

	switch diffCount {
	case 0:
		out := s.Clone()
		if len(fields) > 0 {
			out.ranges[fields[0]] = EmptyRange()
		}
		return out
	case 1:
		out := s.Clone()
		out.ranges[diffField] = s.Range(diffField).Difference(other.Range(diffField))
		return out
	default:
		return s.Clone()
	}
}

// MatchPossible reports whether no explicit range in s is empty.
func (s *FieldRangeSet) MatchPossible() bool {
	for _, fr := range s.ranges {
		if fr.IsEmpty() {
			return false
		}
	}
	return true
}

// Subset returns a new set restricted to the named fields.
func (s *FieldRangeSet) Subset(fields []string) *FieldRangeSet {
	out := NewFieldRangeSet()
	for _, f := range fields {
		if fr, ok := s.ranges[f]; ok {
			out.ranges[f] = fr
		}
	}
	return out
}

// SimplifiedQuery renders each nontrivial field's range as a small
// operator expression, in the order given by fields (or field-name order
// if fields is nil).
func (s *FieldRangeSet) SimplifiedQuery(fields []string) map[string]interface{} {
	order := fields
	if order == nil {
		order = s.Fields()
	}
	out := make(map[string]interface{})
	for _, f := range order {
		fr, ok := s.ranges[f]
		if !ok || !fr.Nontrivial() {
			continue
		}
		out[f] = simplifyRange(fr)
	}
	return out
}

func simplifyRange(fr FieldRange) interface{} {
	if fr.Equality() {
		return value.ToInterface(fr.Min())
	}
	doc := make(map[string]interface{})
	if !fr.Min().IsMin() {
		if fr.MinInclusive() {
			doc["$gte"] = value.ToInterface(fr.Min())
		} else {
			doc["$gt"] = value.ToInterface(fr.Min())
		}
	}
	if !fr.Max().IsMax() {
		if fr.MaxInclusive() {
			doc["$lte"] = value.ToInterface(fr.Max())
		} else {
			doc["$lt"] = value.ToInterface(fr.Max())
		}
	}
	return doc
}
