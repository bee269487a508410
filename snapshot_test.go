package vecdb

import (
	"os"
	"path/filepath"
	"testing"
)

// TestSnapshotRoundTrip covers a populated store surviving a restart
// against the same snapshot path with every library, document, and chunk
// intact and searchable.
func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vecdb.json")

	s1 := NewStore(Config{DefaultIndex: IndexLinear, PersistencePath: path}, nil)
	l1, _ := s1.CreateLibrary(&Library{Name: "L1", Description: "first", Metadata: Metadata{"k": "v"}})
	s1.CreateDocument(l1.ID, &Document{Name: "doc-a", Chunks: []*Chunk{
		{Text: "alpha", Embedding: []float64{1, 0, 0, 0}, Metadata: Metadata{"n": 1.0}},
		{Text: "beta", Embedding: []float64{0, 1, 0, 0}},
	}})
	l2, _ := s1.CreateLibrary(&Library{Name: "L2", Description: "second"})
	s1.CreateDocument(l2.ID, &Document{Name: "doc-b", Chunks: []*Chunk{
		{Text: "gamma", Embedding: []float64{0, 0, 1, 0}},
		{Text: "delta", Embedding: []float64{0, 0, 0, 1}},
		{Text: "epsilon", Embedding: []float64{1, 1, 0, 0}},
	}})

	before1, _ := s1.Search(l1.ID, []float64{1, 0, 0, 0}, 1)
	before2, _ := s1.Search(l2.ID, []float64{0, 0, 1, 0}, 1)

	// Simulate a process restart: a fresh Store pointed at the same path.
	s2 := NewStore(Config{DefaultIndex: IndexLinear, PersistencePath: path}, nil)

	gotL1, err := s2.GetLibrary(l1.ID)
	if err != nil {
		t.Fatalf("library 1 missing after reload: %v", err)
	}
	if gotL1.Name != "L1" || gotL1.Description != "first" {
		t.Errorf("library 1 fields did not round-trip: %+v", gotL1)
	}
	if len(gotL1.Documents) != 1 || len(gotL1.Documents[0].Chunks) != 2 {
		t.Fatalf("library 1's documents/chunks did not round-trip: %+v", gotL1.Documents)
	}
	for _, c := range gotL1.Documents[0].Chunks {
		if c.Text == "alpha" && c.Embedding[0] != 1 {
			t.Errorf("embedding did not round-trip bit-exactly: %v", c.Embedding)
		}
	}

	gotL2, err := s2.GetLibrary(l2.ID)
	if err != nil {
		t.Fatalf("library 2 missing after reload: %v", err)
	}
	if len(gotL2.Documents) != 1 || len(gotL2.Documents[0].Chunks) != 3 {
		t.Fatalf("library 2's documents/chunks did not round-trip: %+v", gotL2.Documents)
	}

	after1, err := s2.Search(l1.ID, []float64{1, 0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("search after reload (library 1): %v", err)
	}
	after2, err := s2.Search(l2.ID, []float64{0, 0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("search after reload (library 2): %v", err)
	}

	if before1[0].Chunk.Text != after1[0].Chunk.Text {
		t.Errorf("top-1 changed across reload for library 1: %q -> %q", before1[0].Chunk.Text, after1[0].Chunk.Text)
	}
	if before2[0].Chunk.Text != after2[0].Chunk.Text {
		t.Errorf("top-1 changed across reload for library 2: %q -> %q", before2[0].Chunk.Text, after2[0].Chunk.Text)
	}
}

// TestSnapshotMissingFileIsNotAnError covers the "startup with no prior
// snapshot" path.
func TestSnapshotMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.json")

	s := NewStore(Config{DefaultIndex: IndexLinear, PersistencePath: path}, nil)
	if len(s.ListLibraries()) != 0 {
		t.Fatal("expected an empty store when no snapshot file exists")
	}
}

// TestSnapshotSkipsCorruptLibraryButLoadsOthers covers a per-library decode
// failure being logged and skipped, without preventing other libraries
// in the same snapshot from loading.
func TestSnapshotSkipsCorruptLibraryButLoadsOthers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vecdb.json")

	raw := `{
		"good-id": {"id":"good-id","name":"Good","description":"d","documents":[],"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"},
		"bad-id": {"id":"bad-id","name":123,"documents":[]}
	}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(Config{DefaultIndex: IndexLinear, PersistencePath: path}, nil)
	libs := s.ListLibraries()
	if len(libs) != 1 {
		t.Fatalf("expected exactly the good library to load, got %d libraries", len(libs))
	}
	if libs[0].ID != "good-id" {
		t.Fatalf("expected good-id to load, got %q", libs[0].ID)
	}
}

// TestPersistenceDisabledSkipsSnapshotIO covers the "PersistencePath ==
// empty disables persistence entirely" case.
func TestPersistenceDisabledSkipsSnapshotIO(t *testing.T) {
	s := NewStore(Config{DefaultIndex: IndexLinear}, nil)
	lib, _ := s.CreateLibrary(&Library{Name: "L", Description: "d"})
	if _, err := s.CreateDocument(lib.ID, &Document{Name: "doc"}); err != nil {
		t.Fatalf("mutation should succeed even with persistence disabled: %v", err)
	}
	st := s.Stats()
	if st.PersistenceEnabled {
		t.Fatal("expected persistence to be reported disabled")
	}
}
