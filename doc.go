// Package vecdb is an embeddable, in-memory vector database core.
//
// It organizes text chunks with dense vector embeddings into a hierarchy of
// libraries, documents, and chunks; maintains a pluggable similarity-search
// index per library under concurrent mutation; and answers k-nearest-
// neighbour queries with optional metadata filtering.
//
// # Quick start
//
//	store := vecdb.NewStore(vecdb.DefaultConfig(), nil)
//
//	lib, _ := store.CreateLibrary(&vecdb.Library{Name: "docs", Description: "technical docs"})
//	doc, _ := store.CreateDocument(lib.ID, &vecdb.Document{Name: "intro"})
//	_, _ = store.AddChunksToDocument(lib.ID, doc.ID, []*vecdb.Chunk{
//	    {Text: "hello world", Embedding: []float64{1, 0, 0}},
//	})
//	_ = store.BuildIndex(lib.ID, vecdb.IndexLinear, vecdb.IndexParams{})
//
//	results, _ := store.Search(lib.ID, []float64{1, 0, 0}, 5)
//	defer store.Close() // flushes a final snapshot, then rejects further calls
//
// # Indexes
//
// Three index strategies share one contract (pkg/index): an exhaustive
// linear scan, a KD-tree with approximate opposite-branch exploration, and
// locality-sensitive hashing over random hyperplanes. See pkg/index for
// details and the accuracy/complexity tradeoffs of each.
//
// # Persistence
//
// When a Config.PersistencePath is set, every mutation is followed by a
// full JSON snapshot of the entity graph (never the indexes, which are
// rebuilt fresh on load). Persistence failures are logged, never returned
// to the caller.
//
// # Out of scope
//
// HTTP request/response mapping, environment-variable-driven process
// bootstrapping beyond Config, and embedding generation are boundary
// concerns left to callers; see cmd/vecdbctl for a CLI adapter built on
// top of the service layer in internal/service.
package vecdb
