package bundoc

import (
	"testing"

	"github.com/ogkla/mongo/internal/planner"
)

func TestDatabaseOpenClose(t *testing.T) {
	tmpdir := t.TempDir()

	opts := DefaultOptions(tmpdir)
	db, err := Open(opts)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if db.IsClosed() {
		t.Error("database should not be closed after opening")
	}

	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}
	if !db.IsClosed() {
		t.Error("database should be closed after Close()")
	}
}

func TestCreateCollection(t *testing.T) {
	tmpdir := t.TempDir()
	db, err := Open(DefaultOptions(tmpdir))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	coll, err := db.CreateCollection("users")
	if err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	if coll.Name() != "users" {
		t.Errorf("expected collection name %q, got %q", "users", coll.Name())
	}

	if _, err := db.CreateCollection("users"); err == nil {
		t.Error("expected error creating duplicate collection")
	}
}

func TestListAndDropCollections(t *testing.T) {
	tmpdir := t.TempDir()
	db, err := Open(DefaultOptions(tmpdir))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if got := db.ListCollections(); len(got) != 0 {
		t.Errorf("expected 0 collections, got %d", len(got))
	}

	if _, err := db.CreateCollection("users"); err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	if _, err := db.CreateCollection("posts"); err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	if got := db.ListCollections(); len(got) != 2 {
		t.Errorf("expected 2 collections, got %d", len(got))
	}

	if err := db.DropCollection("posts"); err != nil {
		t.Fatalf("failed to drop collection: %v", err)
	}
	if got := db.ListCollections(); len(got) != 1 {
		t.Errorf("expected 1 collection after drop, got %d", len(got))
	}
	if _, err := db.GetCollection("posts"); err == nil {
		t.Error("expected error getting dropped collection")
	}
}

func TestDatabaseReopenRestoresIndexes(t *testing.T) {
	tmpdir := t.TempDir()

	db, err := Open(DefaultOptions(tmpdir))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	coll, err := db.CreateCollection("users")
	if err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	if err := coll.EnsureIndex("by_age", planner.KeyPattern{{Field: "age", Dir: 1}}); err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	if _, err := coll.Put(map[string]interface{}{"_id": "1", "age": 30}); err != nil {
		t.Fatalf("failed to put document: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	db2, err := Open(DefaultOptions(tmpdir))
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db2.Close()

	coll2, err := db2.GetCollection("users")
	if err != nil {
		t.Fatalf("failed to get collection after reopen: %v", err)
	}
	idxNames := coll2.ListIndexes()
	if len(idxNames) != 1 || idxNames[0] != "by_age" {
		t.Fatalf("expected index %q to survive restart, got %v", "by_age", idxNames)
	}

	doc, err := coll2.FindByID("1")
	if err != nil {
		t.Fatalf("failed to find document after reopen: %v", err)
	}
	if doc["age"] != float64(30) {
		t.Errorf("expected age 30 after reopen, got %v", doc["age"])
	}
}
