package vecdb

import "github.com/vecdbx/vecdb/pkg/index"

// IndexParams carries the per-build overrides a
// `POST .../index?index_type=…&num_hashes=…&num_buckets=…` request accepts.
// A zero field means "use the store's configured default".
type IndexParams struct {
	NumHashes  int
	NumBuckets int
}

// BuildIndex replaces a library's index with a freshly built one of the
// requested type, rebuilt from every chunk currently in the library: a
// full rebuild, never an in-place conversion. params overrides the
// store's configured LSH defaults for this build only; the override is
// not persisted as the library's standing configuration.
func (s *Store) BuildIndex(libraryID string, indexType IndexType, params IndexParams) error {
	const op = "Store.BuildIndex"

	if err := s.checkOpen(op); err != nil {
		return err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return wrapErr(op, KindNotFound, ErrNotFound)
	}
	if !indexType.valid() {
		return wrapErr(op, KindValidation, ErrInvalidIndexType)
	}

	e.mu.Lock()
	e.lib.IndexType = indexType
	chunks := e.lib.allChunks()
	e.mu.Unlock()

	ip := s.cfg.indexParams()
	if params.NumHashes > 0 {
		ip.NumHashes = params.NumHashes
	}
	if params.NumBuckets > 0 {
		ip.NumBuckets = params.NumBuckets
	}

	if err := s.addAndRebuildWith(e, chunks, idxTypeParams{indexType, ip}); err != nil {
		return wrapErr(op, KindInternal, err)
	}

	s.persist(op)
	return nil
}

// IndexInfo reports a library's current index state.
type IndexInfo struct {
	Type      IndexType
	IsBuilt   bool
	NumChunks int
}

func (s *Store) GetIndexInfo(libraryID string) (*IndexInfo, error) {
	const op = "Store.GetIndexInfo"

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	e, ok := s.entry(libraryID)
	if !ok {
		return nil, wrapErr(op, KindNotFound, ErrNotFound)
	}

	// Read the entity-graph field first and release it before taking the
	// index lock, so this never nests mu inside idxMu or vice versa.
	idxType := indexTypeOf(e)

	e.idxMu.Lock()
	defer e.idxMu.Unlock()
	if e.idx == nil {
		return nil, wrapErr(op, KindPrecondition, ErrIndexNotBuilt)
	}
	return &IndexInfo{
		Type:      idxType,
		IsBuilt:   e.idx.IsBuilt(),
		NumChunks: e.idx.Size(),
	}, nil
}

func indexTypeOf(e *libraryEntry) IndexType {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lib.IndexType
}

// IndexTypeInfo describes one strategy's speed/space/accuracy tradeoffs,
// re-exported from pkg/index so callers never need to import it directly.
type IndexTypeInfo struct {
	Name        string
	BuildTime   string
	SearchTime  string
	Space       string
	Accuracy    string
	Description string
}

// DescribeIndexTypes reports the tradeoffs of every supported strategy,
// for the CLI and any service consumer that wants to show it to a user.
func DescribeIndexTypes() map[IndexType]IndexTypeInfo {
	out := make(map[IndexType]IndexTypeInfo, 3)
	for t, info := range index.DescribeAll() {
		out[IndexType(t)] = IndexTypeInfo(info)
	}
	return out
}
