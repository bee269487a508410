// Package index implements the three similarity-search index strategies a
// library can be built with: exhaustive linear scan, a KD-tree partition,
// and locality-sensitive hashing over random hyperplanes. All three answer
// the same four-operation contract so the store can swap strategies behind
// a factory without knowing which one is live.
package index

import (
	"errors"
	"fmt"
)

// ErrNotBuilt is returned by Search when called before Build.
var ErrNotBuilt = errors.New("index not built")

// ErrDimensionMismatch is returned when a query or inserted embedding's
// length doesn't match the index's fixed dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Item is the minimal unit an index stores: an opaque ID (the owning
// chunk's ID) and its embedding. Indexes never see chunk text or
// metadata — that stays in the store, which maps IDs back to chunks after
// a search.
type Item struct {
	ID        string
	Embedding []float64
}

// Index is the four-operation contract every strategy implements. AddChunks
// appends to the working set without making it searchable; Build transitions
// to a searchable state reflecting the current working set and is
// idempotent; Search fails if the index isn't built or the query's
// dimension doesn't match; Reset discards the working set entirely.
type Index interface {
	AddChunks(items []Item) error
	Build() error
	Search(query []float64, k int) ([]string, []float64, error)
	Reset()
	IsBuilt() bool
	Size() int
}

// Type names one of the three supported strategies.
type Type string

const (
	Linear Type = "linear"
	KDTree Type = "kdtree"
	LSH    Type = "lsh"
)

// Params configures LSH; Linear and KDTree ignore it.
type Params struct {
	NumHashes  int
	NumBuckets int
	// Seed fixes the LSH hyperplane RNG for reproducible tests. Zero means
	// "pick a process-stable default seed" (see lsh.go).
	Seed int64
}

// New builds an empty index of the given type.
func New(t Type, p Params) (Index, error) {
	switch t {
	case Linear:
		return newLinearIndex(), nil
	case KDTree:
		return newKDTreeIndex(), nil
	case LSH:
		return newLSHIndex(p)
	default:
		return nil, fmt.Errorf("%w: %q", errInvalidType, t)
	}
}

var errInvalidType = errors.New("invalid index type")

// Info describes the tradeoffs of one strategy, used by the
// index-types/info service operation and the CLI.
type Info struct {
	Name        string
	BuildTime   string
	SearchTime  string
	Space       string
	Accuracy    string
	Description string
}

// DescribeAll returns Info for every supported strategy, grounded on the
// original reference's IndexFactory.get_index_info table.
func DescribeAll() map[Type]Info {
	return map[Type]Info{
		Linear: {
			Name:        "Linear Search",
			BuildTime:   "O(1)",
			SearchTime:  "O(n)",
			Space:       "O(n)",
			Accuracy:    "100%",
			Description: "Exhaustive scan against every embedding. Exact, simple, slow at scale.",
		},
		KDTree: {
			Name:        "KD-Tree",
			BuildTime:   "O(n log n)",
			SearchTime:  "O(log n) typical, approximate",
			Space:       "O(n)",
			Accuracy:    "approximate (depends on exploration threshold)",
			Description: "Space-partitioning binary tree; only explores the far branch when near the split plane.",
		},
		LSH: {
			Name:        "Locality-Sensitive Hashing",
			BuildTime:   "O(n)",
			SearchTime:  "O(1) amortized",
			Space:       "O(n)",
			Accuracy:    "~90-95%",
			Description: "Random hyperplane projections bucket similar vectors together for fast candidate retrieval.",
		},
	}
}
