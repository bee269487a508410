package vecdb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vecdbx/vecdb/internal/logging"
	"github.com/vecdbx/vecdb/pkg/index"
)

// libraryEntry wraps one Library with two locks: mu guards the entity
// graph (documents/chunks/metadata), idxMu serializes build and search
// against that library's index. Acquisition order is always mu, then
// idxMu — no call path in this file inverts it.
type libraryEntry struct {
	mu         sync.RWMutex
	idxMu      sync.Mutex
	lib        *Library
	idx        index.Index
	generation uint64 // bumped every time idx is rebuilt; invalidates cached suggestions
}

// Store is the concurrency-safe, in-memory home for every library, its
// documents and chunks, and its index. A registry lock protects the
// libraries map itself; each library's own entity-graph and index locks
// protect everything below it, so a write to one library never blocks a
// read of another beyond the brief window needed to look the entry up.
// Splitting the lock per library (rather than one global read-write lock
// over the whole store) is what keeps that guarantee from requiring a
// single contended mutex.
type Store struct {
	mu         sync.RWMutex
	libraries  map[string]*libraryEntry
	cfg        Config
	logger     logging.Logger
	snapshotMu sync.Mutex // serializes snapshot writes independent of any single library's locks
	closed     bool
}

// NewStore creates an empty store. If cfg.PersistencePath is non-empty and
// names an existing file, its contents are loaded immediately; a missing
// file silently leaves the store empty, and an unreadable file or
// malformed entry is logged and otherwise ignored.
func NewStore(cfg Config, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Store{
		libraries: make(map[string]*libraryEntry),
		cfg:       cfg,
		logger:    logger,
	}
	if cfg.PersistencePath != "" {
		if err := s.loadSnapshot(); err != nil {
			s.logger.Error("failed to load snapshot", "path", cfg.PersistencePath, "err", err)
		}
	}
	return s
}

func (s *Store) entry(id string) (*libraryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.libraries[id]
	return e, ok
}

// Close flushes a final snapshot (if persistence is configured) and marks
// the store closed: every subsequent public operation that returns an
// error fails fast with ErrStoreClosed instead of touching the entity
// graph. ListLibraries and Stats, which return no error, keep reading the
// in-memory state after Close. Close itself is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.cfg.PersistencePath == "" {
		return nil
	}
	if err := s.writeSnapshot(); err != nil {
		s.logger.Error("final snapshot write failed", "op", "Store.Close", "err", err)
	}
	return nil
}

func (s *Store) checkOpen(op string) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return wrapErr(op, KindPrecondition, ErrStoreClosed)
	}
	return nil
}

// Stats summarizes the whole store: counts of libraries, documents, and
// chunks, how many libraries have a built index, and the on-disk
// footprint of the snapshot file.
type Stats struct {
	TotalLibraries      int
	TotalDocuments      int
	TotalChunks         int
	IndexedLibraries    int
	PersistenceEnabled  bool
	SnapshotSizeBytes   int64
}

// Stats gathers aggregate counts under a read lock on the registry and a
// read lock on each library in turn; it never holds more than one
// library's lock at a time, so it cannot participate in a deadlock with
// per-library writers.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	entries := make([]*libraryEntry, 0, len(s.libraries))
	for _, e := range s.libraries {
		entries = append(entries, e)
	}
	persistenceEnabled := s.cfg.PersistencePath != ""
	s.mu.RUnlock()

	st := Stats{
		TotalLibraries:     len(entries),
		PersistenceEnabled: persistenceEnabled,
	}
	for _, e := range entries {
		e.mu.RLock()
		st.TotalDocuments += len(e.lib.Documents)
		st.TotalChunks += e.lib.TotalChunks()
		e.mu.RUnlock()

		e.idxMu.Lock()
		if e.idx != nil && e.idx.IsBuilt() {
			st.IndexedLibraries++
		}
		e.idxMu.Unlock()
	}

	if persistenceEnabled {
		if sz, err := s.snapshotSize(); err == nil {
			st.SnapshotSizeBytes = sz
		}
	}
	return st
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}
