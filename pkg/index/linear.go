package index

import (
	"container/heap"
	"sync"
)

// linearIndex is an exhaustive brute-force scan: O(1) build, O(n) search,
// exact accuracy. Grounded on pkg/index/flat.go from the reference Go
// repo this package follows, which keeps a map[string][]float32 and a
// max-heap of the current top-k. This version keeps items in an ordered
// slice instead of a map, because equal scores must break ties by
// insertion order, which a map can't give; the heap eviction rule below
// encodes that tie-break directly.
type linearIndex struct {
	mu        sync.RWMutex
	items     []Item
	dimension int
	built     bool
}

func newLinearIndex() *linearIndex {
	return &linearIndex{}
}

func (l *linearIndex) AddChunks(items []Item) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, it := range items {
		if l.dimension == 0 {
			l.dimension = len(it.Embedding)
		} else if len(it.Embedding) != l.dimension {
			return ErrDimensionMismatch
		}
		l.items = append(l.items, it)
	}
	return nil
}

func (l *linearIndex) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.built = true
	return nil
}

func (l *linearIndex) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.dimension = 0
	l.built = false
}

func (l *linearIndex) IsBuilt() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.built
}

func (l *linearIndex) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// scoredItem pairs a candidate with its similarity score and its original
// insertion position, so the eviction heap can implement the "earlier
// insertion wins ties" rule.
type scoredItem struct {
	id    string
	score float64
	pos   int
}

// worseHeap is a max-heap over "worseness": its root is always the
// weakest candidate currently retained, so when a better candidate
// arrives we can evict in O(log k). Lower score is worse; on a tie, the
// later-inserted item (higher pos) is worse, which is what keeps earlier
// insertions in the final results on score ties.
type worseHeap []scoredItem

func (h worseHeap) Len() int { return len(h) }
func (h worseHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].pos > h[j].pos
}
func (h worseHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *worseHeap) Push(x interface{}) {
	*h = append(*h, x.(scoredItem))
}
func (h *worseHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (l *linearIndex) Search(query []float64, k int) ([]string, []float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.built {
		return nil, nil, ErrNotBuilt
	}
	if len(l.items) == 0 {
		return []string{}, []float64{}, nil
	}
	if len(query) != l.dimension {
		return nil, nil, ErrDimensionMismatch
	}

	if k <= 0 {
		return []string{}, []float64{}, nil
	}

	h := &worseHeap{}
	heap.Init(h)

	for pos, it := range l.items {
		score := CosineSimilarity(query, it.Embedding)
		cand := scoredItem{id: it.ID, score: score, pos: pos}
		switch {
		case h.Len() < k:
			heap.Push(h, cand)
		case isWorse(cand, (*h)[0]):
			// candidate is no better than the current worst kept result
		default:
			heap.Pop(h)
			heap.Push(h, cand)
		}
	}

	ordered := make([]scoredItem, h.Len())
	for i := len(ordered) - 1; i >= 0; i-- {
		ordered[i] = heap.Pop(h).(scoredItem)
	}

	ids := make([]string, len(ordered))
	scores := make([]float64, len(ordered))
	for i, s := range ordered {
		ids[i] = s.id
		scores[i] = s.score
	}
	return ids, scores, nil
}

// isWorse reports whether a should be evicted before b under the same
// ordering worseHeap.Less encodes.
func isWorse(a, b scoredItem) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.pos > b.pos
}
