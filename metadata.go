package bundoc

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ogkla/mongo/internal/planner"
)

// IndexMeta persists one collection index: the composite key pattern it
// was built over and the root page of its backing B+Tree. Keeping the
// pattern, not just a field name, is what lets a restarted database hand
// the planner the same KeyPattern it projected FieldRangeVectors onto
// before the process exited.
type IndexMeta struct {
	Pattern planner.KeyPattern `json:"pattern"`
	RootID  uint64             `json:"root_id"`
}

// CollectionMeta holds the persisted shape of a single collection: its
// name and every index registered on it, keyed by index name.
type CollectionMeta struct {
	Name    string               `json:"name"`
	Indexes map[string]IndexMeta `json:"indexes"`
}

// SystemMetadata is the database's system catalog: the set of
// collections and their indexes, serialized to a single JSON file
// alongside the data file.
type SystemMetadata struct {
	Collections map[string]CollectionMeta `json:"collections"`
}

// MetadataManager loads, mutates, and persists SystemMetadata under a
// single mutex, the way bundoc's own catalog file is managed.
type MetadataManager struct {
	path     string
	metadata SystemMetadata
	mu       sync.RWMutex
}

// NewMetadataManager opens (or initializes) the catalog file at path.
func NewMetadataManager(path string) (*MetadataManager, error) {
	m := &MetadataManager{
		path: path,
		metadata: SystemMetadata{
			Collections: make(map[string]CollectionMeta),
		},
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MetadataManager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("bundoc: failed to read system catalog: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &m.metadata); err != nil {
		return fmt.Errorf("bundoc: failed to parse system catalog: %w", err)
	}
	if m.metadata.Collections == nil {
		m.metadata.Collections = make(map[string]CollectionMeta)
	}
	return nil
}

// Save persists the current catalog to disk.
func (m *MetadataManager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveLocked()
}

func (m *MetadataManager) saveLocked() error {
	data, err := json.MarshalIndent(m.metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("bundoc: failed to marshal system catalog: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("bundoc: failed to write system catalog: %w", err)
	}
	return nil
}

// UpdateCollection replaces a collection's full index set and persists
// the catalog.
func (m *MetadataManager) UpdateCollection(name string, indexes map[string]IndexMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata.Collections[name] = CollectionMeta{Name: name, Indexes: indexes}
	return m.saveLocked()
}

// UpdateIndexRoot records a single index's new root page after the
// B+Tree it backs has split or rebalanced at the root. It is the target
// of BPlusTree.SetOnRootChange, so a collection's indexes survive a
// restart pointed at their current root instead of a stale one.
func (m *MetadataManager) UpdateIndexRoot(collName, indexName string, rootID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.metadata.Collections[collName]
	if !ok {
		return fmt.Errorf("bundoc: unknown collection %q", collName)
	}
	entry, ok := coll.Indexes[indexName]
	if !ok {
		return fmt.Errorf("bundoc: unknown index %q.%q", collName, indexName)
	}
	entry.RootID = rootID
	coll.Indexes[indexName] = entry
	m.metadata.Collections[collName] = coll
	return m.saveLocked()
}

// GetCollection returns the persisted metadata for name.
func (m *MetadataManager) GetCollection(name string) (CollectionMeta, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.metadata.Collections[name]
	return meta, ok
}

// DeleteCollection removes a collection's catalog entry.
func (m *MetadataManager) DeleteCollection(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.metadata.Collections, name)
	return m.saveLocked()
}

// ListCollections returns every collection name known to the catalog.
func (m *MetadataManager) ListCollections() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.metadata.Collections))
	for name := range m.metadata.Collections {
		names = append(names, name)
	}
	return names
}
