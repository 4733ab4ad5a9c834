package planner

import "github.com/ogkla/mongo/internal/query"

// OrSet drives a top-level disjunction. It holds a base FieldRangeSet
// shared by every clause (the non-disjunctive conjuncts) plus two parallel
// queues of per-clause FieldRangeSets: a precise queue, progressively
// narrowed by subtracting already-visited clauses so later clauses don't
// re-report documents an earlier clause already covered, and an original
// queue holding each clause's un-narrowed set.
type OrSet struct {
	baseSet  *FieldRangeSet
	precise  []*FieldRangeSet
	original []*FieldRangeSet
	hadOr    bool
}

// NewOrSet builds the disjunction driver for root. The non-disjunctive
// conjuncts become the base set; every top-level $or's children each
// become one clause in the queues, in document order.
func NewOrSet(root query.Node) (*OrSet, error) {
	base, err := LowerFieldRangeSet(root)
	if err != nil {
		return nil, err
	}
	os := &OrSet{baseSet: base}

	logical, ok := root.(*query.LogicalNode)
	if !ok {
		return os, nil
	}
	for _, child := range logical.Children {
		ln, ok := child.(*query.LogicalNode)
		if !ok || ln.Op != query.LogicalOr {
			continue
		}
		os.hadOr = true
		for _, clauseNode := range ln.Children {
			clauseSet, err := LowerFieldRangeSet(clauseNode)
			if err != nil {
				return nil, err
			}
			os.precise = append(os.precise, clauseSet)
			os.original = append(os.original, clauseSet.Clone())
		}
	}
	return os, nil
}

// HadOr reports whether root contained a top-level $or.
func (os *OrSet) HadOr() bool { return os.hadOr }

// TopFrs returns the base set intersected with the precise queue's head,
// as a fresh set. If the queue is empty it returns a copy of the base set.
func (os *OrSet) TopFrs() *FieldRangeSet {
	if len(os.precise) == 0 {
		return os.baseSet.Clone()
	}
	return os.baseSet.Intersect(os.precise[0])
}

// TopFrsOriginal returns the base set intersected with the original
// queue's head, as a fresh set.
func (os *OrSet) TopFrsOriginal() *FieldRangeSet {
	if len(os.original) == 0 {
		return os.baseSet.Clone()
	}
	return os.baseSet.Intersect(os.original[0])
}

// PopOrClause discards the head of both queues, then subtracts the popped
// clause's original ranges (restricted to indexKeyFields if non-nil) from
// every remaining precise queue entry via the nearly-contained rule of
// §4.3. Entries that cannot be safely subtracted are left unchanged --
// looser bounds, still correct, never incorrect. Passing a nil
// indexKeyFields subtracts using all of the popped clause's fields.
func (os *OrSet) PopOrClause(indexKeyFields []string) {
	if len(os.original) == 0 {
		return
	}
	popped := os.original[0]
	os.original = os.original[1:]
	os.precise = os.precise[1:]

	subtractSet := popped
	if indexKeyFields != nil {
		subtractSet = popped.Subset(indexKeyFields)
	}
	for i := range os.precise {
		os.precise[i] = os.precise[i].Difference(subtractSet)
	}
}

// OrFinished reports whether a disjunction was present and every clause
// has now been popped.
func (os *OrSet) OrFinished() bool {
	return os.hadOr && len(os.precise) == 0
}

// MoreOrClauses reports whether clauses remain in the queue.
func (os *OrSet) MoreOrClauses() bool {
	return len(os.precise) > 0
}
