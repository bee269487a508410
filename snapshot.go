package vecdb

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/vecdbx/vecdb/pkg/index"
)

// snapshotDoc is the on-disk shape: a mapping from library ID to full
// library object.
type snapshotDoc map[string]*Library

// persist writes a full snapshot if persistence is configured, logging
// and swallowing any failure — persistence errors never propagate to
// callers, so an in-memory mutation always stays visible even when the
// disk write behind it fails.
func (s *Store) persist(op string) {
	if s.cfg.PersistencePath == "" {
		return
	}
	if err := s.writeSnapshot(); err != nil {
		s.logger.Error("snapshot write failed", "op", op, "path", s.cfg.PersistencePath, "err", err)
	}
}

func (s *Store) writeSnapshot() error {
	s.mu.RLock()
	entries := make([]*libraryEntry, 0, len(s.libraries))
	for _, e := range s.libraries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	doc := make(snapshotDoc, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		doc[e.lib.ID] = cloneLibrary(e.lib)
		e.mu.RUnlock()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	// An advisory cross-process file lock around the write. The store's
	// own concurrency model is single-process, so this is defensive
	// plumbing against a second process sharing the same snapshot path,
	// not a substitute for the in-process locks above.
	fl := flock.New(s.cfg.PersistencePath + ".lock")
	locked, lockErr := fl.TryLock()
	if lockErr != nil {
		s.logger.Warn("snapshot file lock unavailable, writing anyway", "err", lockErr)
	} else if !locked {
		s.logger.Warn("snapshot file lock held elsewhere, writing anyway")
	} else {
		defer fl.Unlock()
	}

	if dir := filepath.Dir(s.cfg.PersistencePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := s.cfg.PersistencePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.cfg.PersistencePath)
}

// loadSnapshot populates the store from PersistencePath. A missing file
// is not an error. A per-library decode failure is logged and skipped
// without blocking the rest of the snapshot from loading; every index is
// rebuilt fresh as a linear index on load — indexes are never part of
// the snapshot.
func (s *Store) loadSnapshot() error {
	data, err := os.ReadFile(s.cfg.PersistencePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for id, libData := range raw {
		var lib Library
		if err := json.Unmarshal(libData, &lib); err != nil {
			s.logger.Error("failed to decode library from snapshot", "library_id", id, "err", err)
			continue
		}
		e := &libraryEntry{lib: &lib}
		s.libraries[lib.ID] = e

		chunks := lib.allChunks()
		if err := s.rebuildAsLinear(e, chunks); err != nil {
			s.logger.Error("failed to rebuild index after load", "library_id", id, "err", err)
		}
	}
	return nil
}

// rebuildAsLinear always reconstructs a library's index as Linear
// regardless of the IndexType field recorded in the snapshot, and records
// IndexLinear as the library's type, since the snapshot never records
// enough information (LSH hyperplanes, KD-tree structure) to reconstruct
// a non-linear index without a full rebuild of its build parameters.
func (s *Store) rebuildAsLinear(e *libraryEntry, chunks []*Chunk) error {
	idx, err := index.New(index.Linear, s.cfg.indexParams())
	if err != nil {
		return err
	}

	items := make([]index.Item, len(chunks))
	for i, c := range chunks {
		items[i] = index.Item{ID: c.ID, Embedding: c.Embedding}
	}
	if err := idx.AddChunks(items); err != nil {
		return err
	}
	if err := idx.Build(); err != nil {
		return err
	}

	e.idxMu.Lock()
	e.idx = idx
	e.generation++
	e.idxMu.Unlock()

	built := now()
	e.mu.Lock()
	e.lib.IndexType = IndexLinear
	e.lib.IndexBuiltAt = &built
	e.mu.Unlock()

	return nil
}

// snapshotSize stats the snapshot file for Stats()'s byte count.
func (s *Store) snapshotSize() (int64, error) {
	info, err := os.Stat(s.cfg.PersistencePath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
