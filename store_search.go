package vecdb

// SearchResult pairs a matched chunk with its similarity score.
type SearchResult struct {
	Chunk *Chunk
	Score float64
}

// Search runs k-NN against a library's current index and resolves the
// returned chunk IDs back to full chunks. It acquires the entity-graph
// read lock, acquires the index lock, runs the search, releases the
// index lock, resolves IDs to chunks (still under the entity-graph read
// lock), then releases it. Metadata filtering happens one layer up, in
// the search service, since it is a post-processing step over the
// chunks this returns.
func (s *Store) Search(libraryID string, query []float64, k int) ([]SearchResult, error) {
	const op = "Store.Search"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	e.idxMu.Lock()
	if e.idx == nil {
		e.idxMu.Unlock()
		return nil, wrapErr(op, KindPrecondition, ErrIndexNotBuilt)
	}
	ids, scores, err := e.idx.Search(query, k)
	e.idxMu.Unlock()
	if err != nil {
		return nil, wrapErr(op, KindValidation, err)
	}

	byID := make(map[string]*Chunk, e.lib.TotalChunks())
	for _, d := range e.lib.Documents {
		for _, c := range d.Chunks {
			byID[c.ID] = c
		}
	}

	out := make([]SearchResult, 0, len(ids))
	for i, id := range ids {
		c, ok := byID[id]
		if !ok {
			continue // chunk was removed after the index was built but before rebuild caught up
		}
		cc := *c
		out = append(out, SearchResult{Chunk: &cc, Score: scores[i]})
	}
	return out, nil
}

// IndexGeneration returns the library's current index-rebuild counter,
// used by the search service to key its suggestion cache so a rebuild
// invalidates stale entries.
func (s *Store) IndexGeneration(libraryID string) (uint64, error) {
	const op = "Store.IndexGeneration"

	if err := s.checkOpen(op); err != nil {
		return 0, err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return 0, wrapErr(op, KindNotFound, ErrNotFound)
	}
	e.idxMu.Lock()
	defer e.idxMu.Unlock()
	return e.generation, nil
}
