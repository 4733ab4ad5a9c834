package planner

// PatternKind classifies how a field is constrained for fingerprinting
// purposes, per §4.8.
type PatternKind int

const (
	PatternEquality PatternKind = iota
	PatternLowerBound
	PatternUpperBound
	PatternUpperAndLowerBound
)

type patternEntry struct {
	Field string
	Kind  PatternKind
}

// QueryPattern is a normalized fingerprint of a FieldRangeSet plus a sort
// spec, used to key a plan cache: queries that share the same per-field
// constraint kind and normalized sort direction produce equal patterns and
// so may reuse a cached plan.
type QueryPattern struct {
	entries    []patternEntry
	sortFields []string
	normSort   []int
}

// NewQueryPattern builds the fingerprint of frs under sortSpec. Fields
// with a trivial (unconstrained) range are omitted. sortSpec's first
// component fixes the canonical direction; remaining components record
// their sign relative to it.
func NewQueryPattern(frs *FieldRangeSet, sortSpec KeyPattern) QueryPattern {
	var entries []patternEntry
	for _, f := range frs.Fields() {
		fr := frs.Range(f)
		if !fr.Nontrivial() {
			continue
		}
		entries = append(entries, patternEntry{Field: f, Kind: classify(fr)})
	}

	sortFields := make([]string, len(sortSpec))
	normSort := make([]int, len(sortSpec))
	if len(sortSpec) > 0 {
		canon := sortSpec[0].Dir
		for i, c := range sortSpec {
			sortFields[i] = c.Field
			normSort[i] = c.Dir * canon
		}
	}

	return QueryPattern{entries: entries, sortFields: sortFields, normSort: normSort}
}

func classify(fr FieldRange) PatternKind {
	if fr.Equality() {
		return PatternEquality
	}
	minIsSentinel := fr.Min().IsMin()
	maxIsSentinel := fr.Max().IsMax()
	switch {
	case !minIsSentinel && !maxIsSentinel:
		return PatternUpperAndLowerBound
	case !minIsSentinel:
		return PatternLowerBound
	default:
		return PatternUpperBound
	}
}

// Less implements the total order of §4.8: lexicographic by (field-name,
// kind) pairs, then by normalized sort.
func (p QueryPattern) Less(other QueryPattern) bool {
	n := len(p.entries)
	if len(other.entries) < n {
		n = len(other.entries)
	}
	for i := 0; i < n; i++ {
		if p.entries[i].Field != other.entries[i].Field {
			return p.entries[i].Field < other.entries[i].Field
		}
		if p.entries[i].Kind != other.entries[i].Kind {
			return p.entries[i].Kind < other.entries[i].Kind
		}
	}
	if len(p.entries) != len(other.entries) {
		return len(p.entries) < len(other.entries)
	}
	return p.compareSort(other) < 0
}

// Equal reports antisymmetric equality over Less's order.
func (p QueryPattern) Equal(other QueryPattern) bool {
	return !p.Less(other) && !other.Less(p)
}

func (p QueryPattern) compareSort(other QueryPattern) int {
	n := len(p.sortFields)
	if len(other.sortFields) < n {
		n = len(other.sortFields)
	}
	for i := 0; i < n; i++ {
		if p.sortFields[i] != other.sortFields[i] {
			if p.sortFields[i] < other.sortFields[i] {
				return -1
			}
			return 1
		}
		if p.normSort[i] != other.normSort[i] {
			if p.normSort[i] < other.normSort[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p.sortFields) < len(other.sortFields):
		return -1
	case len(p.sortFields) > len(other.sortFields):
		return 1
	default:
		return 0
	}
}
