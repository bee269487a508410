package index

import (
	"sort"
	"sync"
)

// explorationThreshold (τ) bounds how often a KD-tree search crosses into
// the far branch of a split: the far side is only visited when the query
// sits within this distance of the splitting plane. This is a fixed
// constant, not a tuning knob — it trades recall for speed and makes the
// index approximate rather than exact.
const explorationThreshold = 0.1

type kdNode struct {
	pos         int // index into kdTreeIndex.items
	left, right *kdNode
}

// kdTreeIndex is a binary space-partitioning tree built once over the
// working set's embeddings, using the struct-with-RWMutex shape the rest
// of this package uses.
type kdTreeIndex struct {
	mu        sync.RWMutex
	items     []Item
	dimension int
	root      *kdNode
	built     bool
}

func newKDTreeIndex() *kdTreeIndex {
	return &kdTreeIndex{}
}

func (t *kdTreeIndex) AddChunks(items []Item) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, it := range items {
		if t.dimension == 0 {
			t.dimension = len(it.Embedding)
		} else if len(it.Embedding) != t.dimension {
			return ErrDimensionMismatch
		}
		t.items = append(t.items, it)
	}
	return nil
}

func (t *kdTreeIndex) Build() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.items) == 0 {
		t.root = nil
		t.built = true
		return nil
	}

	indices := make([]int, len(t.items))
	for i := range indices {
		indices[i] = i
	}
	t.root = t.buildNode(indices, 0)
	t.built = true
	return nil
}

// buildNode recursively partitions indices on the axis d%dimension,
// splitting at the median element along that axis: left holds strictly
// less, right holds strictly greater-or-equal.
func (t *kdTreeIndex) buildNode(indices []int, depth int) *kdNode {
	if len(indices) == 0 {
		return nil
	}

	axis := depth % t.dimension
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return t.items[sorted[i]].Embedding[axis] < t.items[sorted[j]].Embedding[axis]
	})

	median := len(sorted) / 2
	// Step back over points equal to the median value so none of them
	// lands in the strictly-less left subtree.
	splitVal := t.items[sorted[median]].Embedding[axis]
	for median > 0 && t.items[sorted[median-1]].Embedding[axis] == splitVal {
		median--
	}
	node := &kdNode{pos: sorted[median]}
	node.left = t.buildNode(sorted[:median], depth+1)
	node.right = t.buildNode(sorted[median+1:], depth+1)
	return node
}

func (t *kdTreeIndex) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = nil
	t.dimension = 0
	t.root = nil
	t.built = false
}

func (t *kdTreeIndex) IsBuilt() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.built
}

func (t *kdTreeIndex) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

func (t *kdTreeIndex) Search(query []float64, k int) ([]string, []float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.built {
		return nil, nil, ErrNotBuilt
	}
	if len(t.items) == 0 || k <= 0 {
		return []string{}, []float64{}, nil
	}
	if len(query) != t.dimension {
		return nil, nil, ErrDimensionMismatch
	}

	var visited []int
	t.searchNode(t.root, query, 0, &visited)

	candidates := make([]scoredItem, len(visited))
	for i, pos := range visited {
		candidates[i] = scoredItem{
			id:    t.items[pos].ID,
			score: CosineSimilarity(query, t.items[pos].Embedding),
			pos:   pos,
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos < candidates[j].pos
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	ids := make([]string, len(candidates))
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
		scores[i] = c.score
	}
	return ids, scores, nil
}

// searchNode descends on the query's side of each split first, then
// crosses into the far branch only when the query is within
// explorationThreshold of the splitting plane. Every visited node
// contributes its point to the candidate set, including internal nodes.
func (t *kdTreeIndex) searchNode(node *kdNode, query []float64, depth int, visited *[]int) {
	if node == nil {
		return
	}
	*visited = append(*visited, node.pos)

	axis := depth % t.dimension
	splitVal := t.items[node.pos].Embedding[axis]
	queryVal := query[axis]

	near, far := node.left, node.right
	if queryVal >= splitVal {
		near, far = node.right, node.left
	}

	t.searchNode(near, query, depth+1, visited)

	dist := queryVal - splitVal
	if dist < 0 {
		dist = -dist
	}
	if dist < explorationThreshold {
		t.searchNode(far, query, depth+1, visited)
	}
}
