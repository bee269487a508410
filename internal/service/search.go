package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vecdbx/vecdb"
	"github.com/vecdbx/vecdb/pkg/filter"
)

const suggestionCacheSize = 256

// SearchService runs k-NN search with metadata filtering, cross-library
// fan-out, and the suggestion/analytics helpers.
type SearchService struct {
	store       *vecdb.Store
	libraryList func() []*vecdb.Library

	suggestCache *lru.Cache[suggestionCacheKey, []string]
}

func NewSearchService(store *vecdb.Store) *SearchService {
	cache, _ := lru.New[suggestionCacheKey, []string](suggestionCacheSize)
	return &SearchService{
		store:        store,
		libraryList:  store.ListLibraries,
		suggestCache: cache,
	}
}

// Query is the caller-supplied shape for a similarity search.
type Query struct {
	Embedding []float64
	K         int
	Filters   filter.Filters
}

// Result is one library's search outcome, including timing and the index
// type that answered it.
type Result struct {
	Chunks       []*vecdb.Chunk
	Scores       []float64
	TotalFound   int
	SearchTimeMs float64
	IndexType    vecdb.IndexType
}

// Search validates the query, runs k-NN through the store, and applies
// metadata filters as a post-processing pass — filtering never runs
// before ranking, so the result may legitimately hold fewer than k
// chunks.
func (s *SearchService) Search(libraryID string, q Query) (*Result, error) {
	const op = "SearchService.Search"

	if len(q.Embedding) == 0 {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrEmptyEmbedding}
	}
	if q.K <= 0 || q.K > 100 {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrInvalidK}
	}
	if len(q.Filters) > 0 {
		if err := filter.Validate(q.Filters); err != nil {
			return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrInvalidRegex}
		}
	}

	start := time.Now()
	matches, err := s.store.Search(libraryID, q.Embedding, q.K)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	chunks := make([]*vecdb.Chunk, 0, len(matches))
	scores := make([]float64, 0, len(matches))
	for _, m := range matches {
		if len(q.Filters) > 0 && !filter.Matches(m.Chunk.Metadata, q.Filters) {
			continue
		}
		chunks = append(chunks, m.Chunk)
		scores = append(scores, m.Score)
	}

	lib, err := s.store.GetLibrary(libraryID)
	indexType := vecdb.IndexNone
	if err == nil {
		indexType = lib.IndexType
	}

	return &Result{
		Chunks:       chunks,
		Scores:       scores,
		TotalFound:   len(chunks),
		SearchTimeMs: float64(elapsed) / float64(time.Millisecond),
		IndexType:    indexType,
	}, nil
}

// SearchAcrossLibraries fans out one search per library concurrently with
// errgroup, swallowing any one library's failure into an empty result so
// a single bad library can't poison the aggregate response.
func (s *SearchService) SearchAcrossLibraries(ctx context.Context, q Query, libraryIDs []string) map[string]*Result {
	if len(libraryIDs) == 0 {
		for _, lib := range s.libraryList() {
			libraryIDs = append(libraryIDs, lib.ID)
		}
	}

	results := make([]*Result, len(libraryIDs))
	g, _ := errgroup.WithContext(ctx)
	for i, id := range libraryIDs {
		i, id := i, id
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = &Result{IndexType: vecdb.IndexNone}
				}
			}()
			res, err := s.Search(id, q)
			if err != nil {
				results[i] = &Result{IndexType: vecdb.IndexNone}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait() // per-library errors are already captured above; this can never itself fail

	out := make(map[string]*Result, len(libraryIDs))
	for i, id := range libraryIDs {
		out[id] = results[i]
	}
	return out
}

type suggestionCacheKey struct {
	libraryID  string
	generation uint64
	partial    string
}

// Suggestions returns up to limit distinct words from chunk text starting
// with partial (case-insensitive), cached per (library, index generation)
// so a rebuild invalidates stale entries.
func (s *SearchService) Suggestions(libraryID, partial string, limit int) ([]string, error) {
	gen, err := s.store.IndexGeneration(libraryID)
	if err != nil {
		gen = 0
	}

	key := suggestionCacheKey{libraryID: libraryID, generation: gen, partial: strings.ToLower(partial) + "#" + strconv.Itoa(limit)}
	if cached, ok := s.suggestCache.Get(key); ok {
		return cached, nil
	}

	lib, err := s.store.GetLibrary(libraryID)
	if err != nil {
		return nil, err
	}

	partialLower := strings.ToLower(partial)
	seen := make(map[string]struct{})
	suggestions := make([]string, 0, limit)

outer:
	for _, doc := range lib.Documents {
		for _, chunk := range doc.Chunks {
			for _, word := range strings.Fields(strings.ToLower(chunk.Text)) {
				if !strings.HasPrefix(word, partialLower) || len(word) <= len(partialLower) {
					continue
				}
				if _, dup := seen[word]; dup {
					continue
				}
				seen[word] = struct{}{}
				suggestions = append(suggestions, word)
				if len(suggestions) >= limit {
					break outer
				}
			}
		}
	}

	sort.Strings(suggestions)
	s.suggestCache.Add(key, suggestions)
	return suggestions, nil
}

// Analytics reports per-library search capability and chunk statistics.
type Analytics struct {
	LibraryID           string
	TotalDocuments      int
	TotalChunks         int
	AverageChunkLength  float64
	EmbeddingDimension  int
	IndexInfo           *vecdb.IndexInfo
	VectorSearch        bool
	MetadataFiltering   bool
	CrossLibrarySearch  bool
	SearchSuggestions   bool
}

func (s *SearchService) Analytics(libraryID string) (*Analytics, error) {
	lib, err := s.store.GetLibrary(libraryID)
	if err != nil {
		return nil, err
	}

	totalChunks := lib.TotalChunks()
	var totalLen int
	dim := 0
	for _, doc := range lib.Documents {
		for _, c := range doc.Chunks {
			totalLen += len(c.Text)
			if dim == 0 {
				dim = len(c.Embedding)
			}
		}
	}
	avgLen := 0.0
	if totalChunks > 0 {
		avgLen = float64(totalLen) / float64(totalChunks)
	}

	info, err := s.store.GetIndexInfo(libraryID)
	if err != nil && vecdb.KindOf(err) != vecdb.KindPrecondition {
		return nil, err
	}

	return &Analytics{
		LibraryID:          libraryID,
		TotalDocuments:     len(lib.Documents),
		TotalChunks:        totalChunks,
		AverageChunkLength: avgLen,
		EmbeddingDimension: dim,
		IndexInfo:          info,
		VectorSearch:       true,
		MetadataFiltering:  true,
		CrossLibrarySearch: true,
		SearchSuggestions:  true,
	}, nil
}
