// Package bundoc ties the query planner in internal/planner to a
// document store backed by storage.BPlusTree: Database owns the on-disk
// Pager and BufferPool plus the system catalog, Collection exposes the
// CRUD and FindQuery surface applications call, and the Iterator types
// compose the stages a query runs through (planned index scan, residual
// filter, dedup, sort, skip, limit).
package bundoc

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ogkla/mongo/internal/logging"
	"github.com/ogkla/mongo/internal/util"
	"github.com/ogkla/mongo/storage"
)

// primaryIndexName is the name reserved for a collection's _id index.
// Every collection has exactly one, created alongside the collection
// itself and never dropped.
const primaryIndexName = "_id"

// Database is the central coordinator: it owns the Pager and BufferPool
// that back every collection's B+Trees, the MetadataManager system
// catalog, and the registry of open Collections.
type Database struct {
	path        string
	pager       *storage.Pager
	bufferPool  *storage.BufferPool
	metadataMgr *MetadataManager
	collections map[string]*Collection
	mu          sync.RWMutex
	closed      bool
}

// Options configures a database instance.
type Options struct {
	// Path is the directory holding the database's data file and system
	// catalog.
	Path string
	// BufferPoolCapacity is the number of pages the buffer pool keeps
	// resident in memory.
	BufferPoolCapacity int
}

// DefaultOptions returns sensible defaults rooted at path.
func DefaultOptions(path string) *Options {
	return &Options{
		Path:               path,
		BufferPoolCapacity: 256,
	}
}

// Open opens (or creates) a database at opts.Path, restoring every
// collection's indexes from the system catalog and attaching a
// root-change listener to each so a later split keeps the catalog
// current.
func Open(opts *Options) (*Database, error) {
	if opts == nil || opts.Path == "" {
		return nil, fmt.Errorf("bundoc: options.Path must be set")
	}

	pager, err := storage.NewPager(opts.Path+"/data.db", nil)
	if err != nil {
		return nil, fmt.Errorf("bundoc: failed to open pager: %w", err)
	}

	capacity := opts.BufferPoolCapacity
	if capacity <= 0 {
		capacity = 256
	}
	bufferPool := storage.NewBufferPool(capacity, pager)

	metadataMgr, err := NewMetadataManager(opts.Path + "/system_catalog.json")
	if err != nil {
		pager.Close()
		return nil, fmt.Errorf("bundoc: failed to load system catalog: %w", err)
	}

	db := &Database{
		path:        opts.Path,
		pager:       pager,
		bufferPool:  bufferPool,
		metadataMgr: metadataMgr,
		collections: make(map[string]*Collection),
	}

	for _, name := range metadataMgr.ListCollections() {
		meta, _ := metadataMgr.GetCollection(name)
		coll := newCollection(name, db)
		for idxName, im := range meta.Indexes {
			tree, err := storage.LoadBPlusTree(bufferPool, storage.PageID(im.RootID))
			if err != nil {
				return nil, fmt.Errorf("bundoc: failed to load index %s.%s: %w", name, idxName, err)
			}
			coll.attachIndex(idxName, im.Pattern, tree)
		}
		db.collections[name] = coll
	}

	logging.L().Info("database opened",
		zap.String("path", opts.Path),
		zap.Int("collections", len(db.collections)))
	return db, nil
}

// CreateCollection creates a new, empty collection with only its primary
// _id index, and persists it to the system catalog.
func (db *Database) CreateCollection(name string) (*Collection, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, util.ErrDatabaseClosed
	}
	if _, exists := db.collections[name]; exists {
		return nil, fmt.Errorf("bundoc: collection %q already exists", name)
	}

	primary, err := storage.NewBPlusTree(db.bufferPool)
	if err != nil {
		return nil, fmt.Errorf("bundoc: failed to create primary index: %w", err)
	}

	coll := newCollection(name, db)
	coll.attachIndex(primaryIndexName, primaryPattern, primary)
	db.collections[name] = coll

	if err := db.metadataMgr.UpdateCollection(name, coll.indexMetaLocked()); err != nil {
		return nil, fmt.Errorf("bundoc: failed to persist collection %q: %w", name, err)
	}
	return coll, nil
}

// GetCollection returns a previously created (or restored) collection.
func (db *Database) GetCollection(name string) (*Collection, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, util.ErrDatabaseClosed
	}
	coll, ok := db.collections[name]
	if !ok {
		return nil, fmt.Errorf("bundoc: %w: %s", util.ErrCollectionNotFound, name)
	}
	return coll, nil
}

// DropCollection removes a collection from the registry and the system
// catalog. It does not reclaim the disk pages its indexes occupied.
func (db *Database) DropCollection(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return util.ErrDatabaseClosed
	}
	if _, ok := db.collections[name]; !ok {
		return fmt.Errorf("bundoc: %w: %s", util.ErrCollectionNotFound, name)
	}
	delete(db.collections, name)
	return db.metadataMgr.DeleteCollection(name)
}

// ListCollections returns the names of every open collection.
func (db *Database) ListCollections() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	return names
}

// Close flushes every dirty page and closes the underlying data file.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return fmt.Errorf("bundoc: database already closed")
	}
	db.closed = true

	if err := db.bufferPool.FlushAllPages(); err != nil {
		return fmt.Errorf("bundoc: failed to flush buffer pool: %w", err)
	}
	return db.pager.Close()
}

// IsClosed reports whether Close has already been called.
func (db *Database) IsClosed() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.closed
}
