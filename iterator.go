package bundoc

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ogkla/mongo/internal/planner"
	"github.com/ogkla/mongo/internal/query"
	"github.com/ogkla/mongo/internal/value"
	"github.com/ogkla/mongo/storage"
)

// Iterator is the standard cursor every query execution stage in this
// package implements: Next advances, Value retrieves, Close releases
// resources. A raw index walk, a predicate filter, a dedup pass, a sort,
// a skip, a limit -- each is one Iterator wrapping another.
type Iterator interface {
	Next() bool
	Value() (storage.Document, error)
	Close() error
}

// TableScanIterator walks every document in a collection via its primary
// index, in primary-key order.
type TableScanIterator struct {
	entries []storage.Entry
	index   int
}

// NewTableScanIterator snapshots the full contents of c's primary index.
func NewTableScanIterator(c *Collection) (*TableScanIterator, error) {
	start, end := primaryScanBounds()
	c.mu.RLock()
	entries, err := c.indexes[primaryIndexName].RangeScan(start, end)
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return &TableScanIterator{entries: entries, index: -1}, nil
}

func (it *TableScanIterator) Next() bool {
	it.index++
	return it.index < len(it.entries)
}

func (it *TableScanIterator) Value() (storage.Document, error) {
	if it.index < 0 || it.index >= len(it.entries) {
		return nil, fmt.Errorf("bundoc: iterator out of bounds")
	}
	return storage.DeserializeDocument(it.entries[it.index].Value)
}

func (it *TableScanIterator) Close() error { return nil }

// PlannedIndexIterator walks one index's composite keys restricted to a
// FieldRangeVector's projection. It drives the vector's skip iterator
// (internal/planner's Iterator.AdvanceTo) against each key it reads,
// re-seeking the underlying B+Tree -- a real tree descent via
// RangeScan, not an in-memory skip over an already-materialized batch --
// whenever the vector's cross-product has a gap the next stored key
// falls into.
type PlannedIndexIterator struct {
	tree    *storage.BPlusTree
	pattern planner.KeyPattern
	vec     *planner.FieldRangeVector
	fetch   func(storage.Entry) (storage.Document, bool)

	cursor  *planner.Iterator
	end     []byte
	batch   []storage.Entry
	pos     int
	current storage.Document
	done    bool
	err     error
}

// NewPlannedIndexIterator scopes a B+Tree scan to vec's bounding
// (StartKey, EndKey) and prepares to walk it key-skippingly.
func NewPlannedIndexIterator(tree *storage.BPlusTree, pattern planner.KeyPattern, vec *planner.FieldRangeVector, fetch func(storage.Entry) (storage.Document, bool)) (*PlannedIndexIterator, error) {
	pii := &PlannedIndexIterator{tree: tree, pattern: pattern, vec: vec, fetch: fetch}
	if vec.IsEmpty() {
		pii.done = true
		return pii, nil
	}

	pii.cursor = vec.NewIterator()
	pii.end = boundaryEnd(pattern, vec.EndKey())
	start := encodeCompositePrefix(pattern, vec.StartKey())

	batch, err := tree.RangeScan(start, pii.end)
	if err != nil {
		return nil, err
	}
	pii.batch = batch
	return pii, nil
}

func (it *PlannedIndexIterator) Next() bool {
	if it.done {
		return false
	}
	for {
		if it.pos >= len(it.batch) {
			it.done = true
			return false
		}

		entry := it.batch[it.pos]
		doc, ok := it.fetch(entry)
		if !ok {
			it.pos++
			continue
		}

		currKey := fieldValues(it.pattern, doc)
		instr := it.cursor.AdvanceTo(currKey)
		switch {
		case instr == planner.Done:
			it.done = true
			return false
		case instr == planner.Continue:
			it.current = doc
			it.pos++
			return true
		default:
			seek := seekTarget(it.pattern, currKey, it.cursor, instr)
			batch, err := it.tree.RangeScan(seek, it.end)
			if err != nil {
				it.done = true
				return false
			}
			if len(batch) > 0 && bytes.Compare(batch[0].Key, entry.Key) <= 0 {
				it.err = fmt.Errorf("bundoc: planned index scan made no progress seeking past key %x", entry.Key)
				it.done = true
				return false
			}
			it.batch = batch
			it.pos = 0
		}
	}
}

func (it *PlannedIndexIterator) Value() (storage.Document, error) { return it.current, it.err }
func (it *PlannedIndexIterator) Close() error                     { return nil }

// SliceIterator replays an already-materialized slice of documents. It
// bridges a planning stage that collects results across several $or
// clauses before the later pagination stages, which were designed to
// wrap a single stream.
type SliceIterator struct {
	docs  []storage.Document
	index int
}

// NewSliceIterator wraps docs as an Iterator.
func NewSliceIterator(docs []storage.Document) *SliceIterator {
	return &SliceIterator{docs: docs, index: -1}
}

func (it *SliceIterator) Next() bool {
	it.index++
	return it.index < len(it.docs)
}

func (it *SliceIterator) Value() (storage.Document, error) {
	if it.index < 0 || it.index >= len(it.docs) {
		return nil, fmt.Errorf("bundoc: iterator out of bounds")
	}
	return it.docs[it.index], nil
}

func (it *SliceIterator) Close() error { return nil }

// FilterIterator yields only the documents source produces that satisfy
// matcher -- the residual predicate check for constraints the chosen
// index's projection didn't fully express.
type FilterIterator struct {
	source  Iterator
	matcher query.Matcher
	current storage.Document
}

// NewFilterIterator wraps source, keeping only documents matcher accepts.
func NewFilterIterator(source Iterator, matcher query.Matcher) *FilterIterator {
	return &FilterIterator{source: source, matcher: matcher}
}

func (it *FilterIterator) Next() bool {
	for it.source.Next() {
		doc, err := it.source.Value()
		if err != nil {
			continue
		}
		if it.matcher.Matches(doc) {
			it.current = doc
			return true
		}
	}
	return false
}

func (it *FilterIterator) Value() (storage.Document, error) { return it.current, nil }
func (it *FilterIterator) Close() error                     { return it.source.Close() }

// DedupIterator drops documents an earlier $or clause's projection
// already proved it would have matched, checked via
// FieldRangeVector.Matches -- the narrow cross-clause de-duplication a
// disjunctive query needs when two clauses' index projections overlap.
type DedupIterator struct {
	source  Iterator
	seen    []*planner.FieldRangeVector
	current storage.Document
}

// NewDedupIterator wraps source, dropping documents any vector in seen
// already matches.
func NewDedupIterator(source Iterator, seen []*planner.FieldRangeVector) *DedupIterator {
	return &DedupIterator{source: source, seen: seen}
}

func (it *DedupIterator) Next() bool {
	for it.source.Next() {
		doc, err := it.source.Value()
		if err != nil {
			continue
		}
		duplicate := false
		for _, v := range it.seen {
			if v.Matches(doc) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			it.current = doc
			return true
		}
	}
	return false
}

func (it *DedupIterator) Value() (storage.Document, error) { return it.current, nil }
func (it *DedupIterator) Close() error                     { return it.source.Close() }

// LimitIterator limits the number of results a source produces.
type LimitIterator struct {
	source Iterator
	limit  int
	count  int
}

// NewLimitIterator caps source at limit documents.
func NewLimitIterator(source Iterator, limit int) *LimitIterator {
	return &LimitIterator{source: source, limit: limit}
}

func (it *LimitIterator) Next() bool {
	if it.count >= it.limit {
		return false
	}
	if it.source.Next() {
		it.count++
		return true
	}
	return false
}

func (it *LimitIterator) Value() (storage.Document, error) { return it.source.Value() }
func (it *LimitIterator) Close() error                     { return it.source.Close() }

// SkipIterator skips the first N results a source produces.
type SkipIterator struct {
	source  Iterator
	skip    int
	skipped bool
}

// NewSkipIterator drops the first skip documents source produces.
func NewSkipIterator(source Iterator, skip int) *SkipIterator {
	return &SkipIterator{source: source, skip: skip}
}

func (it *SkipIterator) Next() bool {
	if !it.skipped {
		for i := 0; i < it.skip; i++ {
			if !it.source.Next() {
				return false
			}
		}
		it.skipped = true
	}
	return it.source.Next()
}

func (it *SkipIterator) Value() (storage.Document, error) { return it.source.Value() }
func (it *SkipIterator) Close() error                     { return it.source.Close() }

// SortIterator buffers every document a source produces, sorts them by
// one field's typed value ordering, and replays them in that order.
type SortIterator struct {
	source    Iterator
	sortField string
	desc      bool
	docs      []storage.Document
	index     int
	prepared  bool
}

// NewSortIterator sorts source's output by field.
func NewSortIterator(source Iterator, field string, desc bool) *SortIterator {
	return &SortIterator{source: source, sortField: field, desc: desc, index: -1}
}

func (it *SortIterator) Next() bool {
	if !it.prepared {
		for it.source.Next() {
			if doc, err := it.source.Value(); err == nil {
				it.docs = append(it.docs, doc)
			}
		}
		it.source.Close()

		sort.Slice(it.docs, func(i, j int) bool {
			result := value.Compare(
				value.FromInterface(it.docs[i][it.sortField]),
				value.FromInterface(it.docs[j][it.sortField]),
			)
			if it.desc {
				return result > 0
			}
			return result < 0
		})
		it.prepared = true
	}

	it.index++
	return it.index < len(it.docs)
}

func (it *SortIterator) Value() (storage.Document, error) {
	if it.index < 0 || it.index >= len(it.docs) {
		return nil, fmt.Errorf("bundoc: iterator out of bounds")
	}
	return it.docs[it.index], nil
}

func (it *SortIterator) Close() error {
	it.docs = nil
	return nil
}
