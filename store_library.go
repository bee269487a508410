package vecdb

import (
	"github.com/vecdbx/vecdb/pkg/index"
)

// CreateLibrary inserts library under a fresh UUID with an empty,
// already-built linear index as its default strategy. Building it
// immediately, even with zero chunks, ensures
// every library has exactly one associated index object from the moment
// it exists, in the "empty-built" state rather than absent. The registry
// lock is held just long enough to insert the entry; the library's own
// locks are never contended by any other goroutine yet, since the entry
// didn't exist until this call returns.
func (s *Store) CreateLibrary(lib *Library) (*Library, error) {
	const op = "Store.CreateLibrary"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	lib.ID = newID()
	lib.CreatedAt = now()
	lib.UpdatedAt = lib.CreatedAt
	if lib.Documents == nil {
		lib.Documents = []*Document{}
	}

	idx, err := index.New(index.Linear, s.cfg.indexParams())
	if err != nil {
		return nil, wrapErr(op, KindInternal, err)
	}
	if err := idx.Build(); err != nil {
		return nil, wrapErr(op, KindInternal, err)
	}

	built := now()
	lib.IndexType = IndexLinear
	lib.IndexBuiltAt = &built

	s.mu.Lock()
	s.libraries[lib.ID] = &libraryEntry{lib: lib, idx: idx}
	s.mu.Unlock()

	s.persist(op)
	return lib, nil
}

// GetLibrary returns a snapshot copy of the library's current state.
func (s *Store) GetLibrary(id string) (*Library, error) {
	const op = "Store.GetLibrary"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	e, ok := s.entry(id)
	if !ok {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneLibrary(e.lib), nil
}

// ListLibraries returns every library. No particular order is promised.
func (s *Store) ListLibraries() []*Library {
	s.mu.RLock()
	entries := make([]*libraryEntry, 0, len(s.libraries))
	for _, e := range s.libraries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*Library, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		out = append(out, cloneLibrary(e.lib))
		e.mu.RUnlock()
	}
	return out
}

// LibraryUpdate carries the subset of Library fields an update may
// change; a nil field means "leave unchanged". ID and CreatedAt are never
// mutable.
type LibraryUpdate struct {
	Name        *string
	Description *string
	Metadata    Metadata
}

// UpdateLibrary applies a partial update atomically. It does not rebuild
// the library's index — renaming or re-describing a library never
// invalidates the vectors it holds.
func (s *Store) UpdateLibrary(id string, upd LibraryUpdate) (*Library, error) {
	const op = "Store.UpdateLibrary"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	e, ok := s.entry(id)
	if !ok {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	e.mu.Lock()
	if upd.Name != nil {
		e.lib.Name = *upd.Name
	}
	if upd.Description != nil {
		e.lib.Description = *upd.Description
	}
	if upd.Metadata != nil {
		e.lib.Metadata = upd.Metadata
	}
	e.lib.UpdatedAt = now()
	out := cloneLibrary(e.lib)
	e.mu.Unlock()

	s.persist(op)
	return out, nil
}

// DeleteLibrary removes a library and its index atomically.
func (s *Store) DeleteLibrary(id string) error {
	const op = "Store.DeleteLibrary"

	if err := s.checkOpen(op); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.libraries[id]; !ok {
		s.mu.Unlock()
		return wrapErr(op, KindNotFound, ErrNotFound)
	}
	delete(s.libraries, id)
	s.mu.Unlock()

	s.persist(op)
	return nil
}

func cloneLibrary(l *Library) *Library {
	out := *l
	out.Documents = make([]*Document, len(l.Documents))
	for i, d := range l.Documents {
		out.Documents[i] = cloneDocument(d)
	}
	return &out
}

func cloneDocument(d *Document) *Document {
	out := *d
	out.Chunks = make([]*Chunk, len(d.Chunks))
	for i, c := range d.Chunks {
		cc := *c
		out.Chunks[i] = &cc
	}
	return &out
}
