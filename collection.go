package bundoc

import (
	"fmt"
	"sync"
	"time"

	"github.com/ogkla/mongo/internal/planner"
	"github.com/ogkla/mongo/internal/query"
	"github.com/ogkla/mongo/internal/util"
	"github.com/ogkla/mongo/internal/value"
	"github.com/ogkla/mongo/storage"
)

// Collection groups documents under one name with the set of composite
// B+Tree indexes the planner may project a query onto. Every collection
// carries a primary _id index; secondary indexes are added by EnsureIndex
// with a caller-chosen composite KeyPattern.
type Collection struct {
	name     string
	db       *Database
	indexes  map[string]*storage.BPlusTree // index name -> backing tree
	patterns map[string]planner.KeyPattern // index name -> key pattern
	order    []string                      // index registration order, for deterministic plan selection
	mu       sync.RWMutex
}

func newCollection(name string, db *Database) *Collection {
	return &Collection{
		name:     name,
		db:       db,
		indexes:  make(map[string]*storage.BPlusTree),
		patterns: make(map[string]planner.KeyPattern),
	}
}

// Name returns the collection's name.
func (c *Collection) Name() string { return c.name }

// attachIndex registers tree under name with pattern and wires its
// root-change callback to persist the new root page into the system
// catalog, so a B+Tree split survives a restart.
func (c *Collection) attachIndex(name string, pattern planner.KeyPattern, tree *storage.BPlusTree) {
	c.indexes[name] = tree
	c.patterns[name] = pattern
	c.order = append(c.order, name)
	tree.SetOnRootChange(func(newRootID storage.PageID) {
		_ = c.db.metadataMgr.UpdateIndexRoot(c.name, name, uint64(newRootID))
	})
}

// indexMetaLocked renders the collection's current indexes as
// persistable metadata. Callers must hold c.mu, or be constructing the
// collection before it is published to the database's registry.
func (c *Collection) indexMetaLocked() map[string]IndexMeta {
	out := make(map[string]IndexMeta, len(c.indexes))
	for name, tree := range c.indexes {
		out[name] = IndexMeta{Pattern: c.patterns[name], RootID: uint64(tree.GetRootID())}
	}
	return out
}

// primaryPattern is the _id index's key pattern: every collection
// registers one, so a query with no better index can still drive
// through pickIndex and PlannedIndexIterator like any secondary index
// rather than needing a separate full-scan code path.
var primaryPattern = planner.KeyPattern{{Field: "_id", Dir: 1}}

func (c *Collection) primaryKey(id storage.DocumentID) []byte {
	return encodeCompositeKey(primaryPattern, storage.Document{"_id": string(id)}, string(id))
}

// primaryScanBounds returns the byte range covering every key the
// primary index can hold, in the same composite encoding secondary
// indexes use.
func primaryScanBounds() (start, end []byte) {
	start = encodeCompositePrefix(primaryPattern, []value.Value{value.Min})
	end = boundaryEnd(primaryPattern, []value.Value{value.Max})
	return start, end
}

// Put inserts doc, assigning it a generated _id if it doesn't already
// carry one, and maintains every secondary index. It is the write-path
// test fixture: the planner's FindQuery is this module's focus, but
// FindQuery needs something to scan.
func (c *Collection) Put(doc storage.Document) (storage.DocumentID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, hasID := doc.GetID()
	if !hasID || id == "" {
		id = storage.DocumentID(generateID())
		doc.SetID(id)
	}

	data, err := doc.Serialize()
	if err != nil {
		return "", fmt.Errorf("bundoc: failed to serialize document: %w", err)
	}

	if err := c.indexes[primaryIndexName].Insert(c.primaryKey(id), data); err != nil {
		return "", fmt.Errorf("bundoc: failed to insert into primary index: %w", err)
	}

	for name, pattern := range c.patterns {
		if name == primaryIndexName {
			continue
		}
		key := encodeCompositeKey(pattern, doc, string(id))
		if err := c.indexes[name].Insert(key, []byte(id)); err != nil {
			return "", fmt.Errorf("bundoc: failed to insert into index %q: %w", name, err)
		}
	}

	return id, nil
}

// FindByID retrieves a single document by its primary key.
func (c *Collection) FindByID(id string) (storage.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findByIDLocked(id)
}

func (c *Collection) findByIDLocked(id string) (storage.Document, error) {
	data, err := c.indexes[primaryIndexName].Search(c.primaryKey(storage.DocumentID(id)))
	if err != nil {
		return nil, fmt.Errorf("bundoc: %w: %s", util.ErrDocumentNotFound, id)
	}
	return storage.DeserializeDocument(data)
}

// Delete removes a document and every secondary index entry it backed.
func (c *Collection) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.findByIDLocked(id)
	if err != nil {
		return err
	}
	for name, pattern := range c.patterns {
		if name == primaryIndexName {
			continue
		}
		_ = c.indexes[name].Delete(encodeCompositeKey(pattern, doc, id))
	}
	return c.indexes[primaryIndexName].Delete(c.primaryKey(storage.DocumentID(id)))
}

// EnsureIndex creates a secondary composite index over pattern if one
// named name doesn't already exist, backfilling it from the primary
// index's current contents.
func (c *Collection) EnsureIndex(name string, pattern planner.KeyPattern) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == primaryIndexName {
		return fmt.Errorf("bundoc: %q is reserved for the primary index", primaryIndexName)
	}
	if _, exists := c.indexes[name]; exists {
		return nil
	}

	tree, err := storage.NewBPlusTree(c.db.bufferPool)
	if err != nil {
		return fmt.Errorf("bundoc: failed to create index %q: %w", name, err)
	}

	start, end := primaryScanBounds()
	entries, err := c.indexes[primaryIndexName].RangeScan(start, end)
	if err != nil {
		return fmt.Errorf("bundoc: failed to backfill index %q: %w", name, err)
	}
	for _, entry := range entries {
		doc, err := storage.DeserializeDocument(entry.Value)
		if err != nil {
			continue
		}
		id, _ := doc.GetID()
		if err := tree.Insert(encodeCompositeKey(pattern, doc, string(id)), []byte(id)); err != nil {
			return fmt.Errorf("bundoc: failed to backfill index %q: %w", name, err)
		}
	}

	c.attachIndex(name, pattern, tree)
	if err := c.db.metadataMgr.UpdateCollection(c.name, c.indexMetaLocked()); err != nil {
		return fmt.Errorf("bundoc: failed to persist index %q: %w", name, err)
	}
	return nil
}

// DropIndex removes a secondary index's definition. It does not
// currently reclaim the disk pages the index's B+Tree occupied.
func (c *Collection) DropIndex(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == primaryIndexName {
		return fmt.Errorf("bundoc: cannot drop the primary index")
	}
	if _, exists := c.indexes[name]; !exists {
		return fmt.Errorf("bundoc: index not found: %s", name)
	}

	delete(c.indexes, name)
	delete(c.patterns, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	return c.db.metadataMgr.UpdateCollection(c.name, c.indexMetaLocked())
}

// ListIndexes returns the names of every secondary index on the
// collection, in registration order.
func (c *Collection) ListIndexes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.order))
	for _, name := range c.order {
		if name != primaryIndexName {
			out = append(out, name)
		}
	}
	return out
}

// List returns every document in the collection, in primary-key order,
// after skip and limit.
func (c *Collection) List(skip, limit int) ([]storage.Document, error) {
	iter, err := NewTableScanIterator(c)
	if err != nil {
		return nil, fmt.Errorf("bundoc: failed to scan collection: %w", err)
	}

	var cur Iterator = iter
	if skip > 0 {
		cur = NewSkipIterator(cur, skip)
	}
	if limit > 0 {
		cur = NewLimitIterator(cur, limit)
	}
	defer cur.Close()

	var out []storage.Document
	for cur.Next() {
		if doc, err := cur.Value(); err == nil {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Count returns the number of documents currently in the collection.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start, end := primaryScanBounds()
	entries, err := c.indexes[primaryIndexName].RangeScan(start, end)
	if err != nil {
		return 0
	}
	return len(entries)
}

// pickIndex chooses the registered index whose FieldRangeVector
// projection of frs has the smallest cross-product size, breaking ties
// by registration order; the primary index's trivial (MIN, MAX)
// projection is always a candidate, so this never fails to find one. A
// projection that comes back empty is immediately decisive -- it proves
// the clause matches nothing under that index's fields -- and short-
// circuits the search.
func (c *Collection) pickIndex(frs *planner.FieldRangeSet) (name string, pattern planner.KeyPattern, vec *planner.FieldRangeVector, ok bool) {
	c.mu.RLock()
	order := append([]string(nil), c.order...)
	patterns := make(map[string]planner.KeyPattern, len(c.patterns))
	for k, v := range c.patterns {
		patterns[k] = v
	}
	c.mu.RUnlock()

	bestSize := -1
	for _, idxName := range order {
		v, err := planner.NewFieldRangeVector(frs, patterns[idxName], 1)
		if err != nil {
			continue // combinatorial limit exceeded for this candidate; try others
		}
		if v.Size() == 0 {
			return idxName, patterns[idxName], v, true
		}
		if bestSize == -1 || v.Size() < bestSize {
			name, pattern, vec, bestSize = idxName, patterns[idxName], v, v.Size()
		}
	}
	return name, pattern, vec, bestSize != -1
}

func (c *Collection) fetchPrimary(entry storage.Entry) (storage.Document, bool) {
	doc, err := storage.DeserializeDocument(entry.Value)
	return doc, err == nil
}

func (c *Collection) fetchSecondary(entry storage.Entry) (storage.Document, bool) {
	doc, err := c.FindByID(string(entry.Value))
	return doc, err == nil
}

// FindQuery executes a MongoDB-shaped predicate document against the
// collection. It lowers the query to an OrSet, drives one planned index
// scan per $or clause -- picking, for each, the registered index whose
// projection is cheapest -- applies the parsed query as a residual
// filter over whatever the chosen index's projection didn't fully
// express, deduplicates against earlier clauses' projections, then
// sorts, skips, and limits the merged result.
func (c *Collection) FindQuery(queryMap map[string]interface{}, opts ...QueryOptions) ([]storage.Document, error) {
	var opt QueryOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	root, err := query.Parse(queryMap)
	if err != nil {
		return nil, fmt.Errorf("bundoc: invalid query: %w", err)
	}
	matcher, ok := root.(query.Matcher)
	if !ok {
		return nil, fmt.Errorf("bundoc: parsed query does not implement Matcher")
	}

	orSet, err := planner.NewOrSet(root)
	if err != nil {
		return nil, fmt.Errorf("bundoc: %w", err)
	}

	var results []storage.Document
	var seenVectors []*planner.FieldRangeVector

	for {
		var clauseFields []string
		frs := orSet.TopFrs()
		if frs.MatchPossible() {
			name, pattern, vec, found := c.pickIndex(frs)
			if found {
				clauseFields = pattern.Fields()
				docs, err := c.runClause(name, pattern, vec, matcher, seenVectors)
				if err != nil {
					return nil, fmt.Errorf("bundoc: %w", err)
				}
				results = append(results, docs...)
				seenVectors = append(seenVectors, vec)
			}
		}

		if !orSet.MoreOrClauses() {
			break
		}
		orSet.PopOrClause(clauseFields)
	}

	var cur Iterator = NewSliceIterator(results)
	if opt.SortField != "" {
		cur = NewSortIterator(cur, opt.SortField, opt.SortDesc)
	}
	if opt.Skip > 0 {
		cur = NewSkipIterator(cur, opt.Skip)
	}
	if opt.Limit > 0 {
		cur = NewLimitIterator(cur, opt.Limit)
	}
	defer cur.Close()

	var out []storage.Document
	for cur.Next() {
		if doc, err := cur.Value(); err == nil {
			out = append(out, doc)
		}
	}
	return out, nil
}

// runClause scans one $or clause's chosen index through the planned
// index iterator, filters by the full query, and (once a prior clause
// has run) drops documents that clause's vector already proved it would
// have matched.
func (c *Collection) runClause(name string, pattern planner.KeyPattern, vec *planner.FieldRangeVector, matcher query.Matcher, seenVectors []*planner.FieldRangeVector) ([]storage.Document, error) {
	c.mu.RLock()
	tree := c.indexes[name]
	c.mu.RUnlock()

	fetch := c.fetchPrimary
	if name != primaryIndexName {
		fetch = c.fetchSecondary
	}

	planned, err := NewPlannedIndexIterator(tree, pattern, vec, fetch)
	if err != nil {
		return nil, err
	}

	var cur Iterator = planned
	cur = NewFilterIterator(cur, matcher)
	if len(seenVectors) > 0 {
		cur = NewDedupIterator(cur, seenVectors)
	}
	defer cur.Close()

	var docs []storage.Document
	for cur.Next() {
		if doc, err := cur.Value(); err == nil {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// generateID generates a unique document ID.
func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
