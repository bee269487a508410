package vecdb

import "github.com/vecdbx/vecdb/pkg/index"

// checkChunkDimensions enforces that every embedding in a library shares
// one dimension. existingDim is 0 when the library has no chunks yet, in
// which case the first non-empty embedding in chunks sets the dimension
// the rest of the batch (and all future additions) must match. Called
// under the library's entity-graph lock, before any mutation, so a
// mismatch fails the whole call with the library left unchanged.
func checkChunkDimensions(existingDim int, chunks []*Chunk) error {
	dim := existingDim
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(c.Embedding)
			continue
		}
		if len(c.Embedding) != dim {
			return ErrDimensionMismatch
		}
	}
	return nil
}

// CreateDocument appends doc to library id and folds its chunks into the
// index with an add-and-rebuild (see addAndRebuild).
func (s *Store) CreateDocument(libraryID string, doc *Document) (*Document, error) {
	const op = "Store.CreateDocument"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	doc.ID = newID()
	doc.CreatedAt = now()
	doc.UpdatedAt = doc.CreatedAt
	if doc.Chunks == nil {
		doc.Chunks = []*Chunk{}
	}
	for _, c := range doc.Chunks {
		c.ID = newID()
		c.CreatedAt = doc.CreatedAt
		c.UpdatedAt = doc.CreatedAt
	}

	e.mu.Lock()
	if err := checkChunkDimensions(e.lib.dimension(), doc.Chunks); err != nil {
		e.mu.Unlock()
		return nil, wrapErr(op, KindValidation, err)
	}
	e.lib.Documents = append(e.lib.Documents, doc)
	e.lib.UpdatedAt = doc.CreatedAt
	out := cloneDocument(doc)
	chunks := e.lib.allChunks()
	e.mu.Unlock()

	if err := s.addAndRebuild(e, chunks); err != nil {
		s.logger.Error("index add-and-rebuild failed", "op", op, "library_id", libraryID, "err", err)
	}

	s.persist(op)
	return out, nil
}

// GetDocument returns a copy of one document from a library.
func (s *Store) GetDocument(libraryID, documentID string) (*Document, error) {
	const op = "Store.GetDocument"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	doc := e.lib.findDocument(documentID)
	if doc == nil {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}
	return cloneDocument(doc), nil
}

// ListDocuments returns every document in a library, in insertion order.
func (s *Store) ListDocuments(libraryID string) ([]*Document, error) {
	const op = "Store.ListDocuments"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Document, len(e.lib.Documents))
	for i, d := range e.lib.Documents {
		out[i] = cloneDocument(d)
	}
	return out, nil
}

// DocumentUpdate carries the mutable subset of Document fields.
type DocumentUpdate struct {
	Name     *string
	Metadata Metadata
	// Chunks, when non-nil, fully replaces the document's chunk list and
	// forces a full index rebuild.
	Chunks []*Chunk
}

// UpdateDocument applies a partial update. Replacing Chunks triggers a
// full rebuild of the library's index from its complete chunk set;
// renaming or re-describing the document does not.
func (s *Store) UpdateDocument(libraryID, documentID string, upd DocumentUpdate) (*Document, error) {
	const op = "Store.UpdateDocument"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	e.mu.Lock()
	doc := e.lib.findDocument(documentID)
	if doc == nil {
		e.mu.Unlock()
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	rebuild := upd.Chunks != nil
	if rebuild {
		if err := checkChunkDimensions(e.lib.dimensionExcluding(documentID), upd.Chunks); err != nil {
			e.mu.Unlock()
			return nil, wrapErr(op, KindValidation, err)
		}
	}
	if upd.Name != nil {
		doc.Name = *upd.Name
	}
	if upd.Metadata != nil {
		doc.Metadata = upd.Metadata
	}
	if rebuild {
		for _, c := range upd.Chunks {
			if c.ID == "" {
				c.ID = newID()
			}
			c.CreatedAt = now()
			c.UpdatedAt = c.CreatedAt
		}
		doc.Chunks = upd.Chunks
	}
	doc.UpdatedAt = now()
	e.lib.UpdatedAt = doc.UpdatedAt
	out := cloneDocument(doc)
	chunks := e.lib.allChunks()
	e.mu.Unlock()

	if rebuild {
		if err := s.fullRebuild(e, chunks); err != nil {
			s.logger.Error("index rebuild failed", "op", op, "library_id", libraryID, "err", err)
		}
	}

	s.persist(op)
	return out, nil
}

// DeleteDocument removes a document and fully rebuilds the library's
// index from the remaining chunks.
func (s *Store) DeleteDocument(libraryID, documentID string) error {
	const op = "Store.DeleteDocument"

	if err := s.checkOpen(op); err != nil {
		return err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return wrapErr(op, KindNotFound, ErrNotFound)
	}

	e.mu.Lock()
	i := e.lib.documentIndex(documentID)
	if i < 0 {
		e.mu.Unlock()
		return wrapErr(op, KindNotFound, ErrNotFound)
	}
	e.lib.Documents = append(e.lib.Documents[:i], e.lib.Documents[i+1:]...)
	e.lib.UpdatedAt = now()
	chunks := e.lib.allChunks()
	e.mu.Unlock()

	if err := s.fullRebuild(e, chunks); err != nil {
		s.logger.Error("index rebuild failed", "op", op, "library_id", libraryID, "err", err)
	}

	s.persist(op)
	return nil
}

// AddChunksToDocument appends chunks and add-and-rebuilds the index; it
// never incrementally patches an already-built index.
func (s *Store) AddChunksToDocument(libraryID, documentID string, newChunks []*Chunk) ([]*Chunk, error) {
	const op = "Store.AddChunksToDocument"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	e.mu.Lock()
	doc := e.lib.findDocument(documentID)
	if doc == nil {
		e.mu.Unlock()
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}
	if err := checkChunkDimensions(e.lib.dimension(), newChunks); err != nil {
		e.mu.Unlock()
		return nil, wrapErr(op, KindValidation, err)
	}

	ts := now()
	for _, c := range newChunks {
		c.ID = newID()
		c.CreatedAt = ts
		c.UpdatedAt = ts
	}
	doc.Chunks = append(doc.Chunks, newChunks...)
	doc.UpdatedAt = ts
	e.lib.UpdatedAt = ts
	out := make([]*Chunk, len(newChunks))
	for i, c := range newChunks {
		cc := *c
		out[i] = &cc
	}
	chunks := e.lib.allChunks()
	e.mu.Unlock()

	if err := s.addAndRebuild(e, chunks); err != nil {
		s.logger.Error("index add-and-rebuild failed", "op", op, "library_id", libraryID, "err", err)
	}

	s.persist(op)
	return out, nil
}

// fullRebuild, like addAndRebuild, feeds the full current chunk set into a
// fresh index of the same type and parameters currently configured, then
// swaps it in.
// Chunk additions and document creations are, in this implementation,
// always paired with a full re-Build() because none of the three
// strategies supports incremental re-indexing without discarding prior
// structure (the KD-tree and LSH hyperplane partitions are only valid
// for the point set they were built over) — so "add-and-rebuild" and
// "full rebuild" share one code path here; they differ only in which
// caller triggers them.
func (s *Store) fullRebuild(e *libraryEntry, chunks []*Chunk) error {
	return s.addAndRebuild(e, chunks)
}

// addAndRebuild never nests the entity-graph lock inside the index lock:
// it takes each lock separately and releases it before taking the other,
// so it cannot invert the entity-graph-then-index acquisition order a
// concurrent Search holds (e.mu then e.idxMu). Building the new index
// itself happens under neither lock.
func (s *Store) addAndRebuild(e *libraryEntry, chunks []*Chunk) error {
	e.mu.RLock()
	idxType := e.lib.IndexType
	e.mu.RUnlock()
	if idxType == IndexNone {
		idxType = s.cfg.DefaultIndex
	}
	return s.addAndRebuildWith(e, chunks, idxTypeParams{idxType, s.cfg.indexParams()})
}

// idxTypeParams bundles a concrete index type with the params to build it
// with, so BuildIndex's per-call LSH overrides and the default add/rebuild
// path share one construction routine.
type idxTypeParams struct {
	typ    IndexType
	params index.Params
}

func (s *Store) addAndRebuildWith(e *libraryEntry, chunks []*Chunk, tp idxTypeParams) error {
	idxType := tp.typ

	idx, err := index.New(index.Type(idxType), tp.params)
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
	e.lib.IndexBuiltAt = &built
	if e.lib.IndexType == IndexNone {
		e.lib.IndexType = idxType
	}
	e.mu.Unlock()

	return nil
}
