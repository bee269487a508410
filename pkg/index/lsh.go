package index

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// defaultLSHSeed is used when Params.Seed is zero, so a library built with
// the zero-value Params still gets reproducible hyperplanes within one
// process lifetime instead of a different random split on every Build.
const defaultLSHSeed = 0x5e5510c4f17

// lshIndex buckets embeddings by a stable hash (mod B) of their projection
// onto each of H random hyperplanes, one bucket table per hyperplane; a
// query only scores items sharing a bucket with it on at least one
// hyperplane. This deliberately uses a single set of H
// hyperplanes with candidate buckets unioned across all of them for
// recall, rather than L tables of K AND-amplified hash functions, which
// trades recall for precision.
type lshIndex struct {
	mu         sync.RWMutex
	items      []Item
	dimension  int
	built      bool
	numHashes  int
	numBuckets int
	seed       int64
	planes     [][]float64        // numHashes planes, each len(dimension)
	tables     []map[uint64][]int // numHashes tables, bucket hash -> item positions
}

func newLSHIndex(p Params) (*lshIndex, error) {
	h := p.NumHashes
	if h <= 0 {
		h = 10
	}
	b := p.NumBuckets
	if b <= 0 {
		b = 100
	}
	seed := p.Seed
	if seed == 0 {
		seed = defaultLSHSeed
	}
	return &lshIndex{
		numHashes:  h,
		numBuckets: b,
		seed:       seed,
	}, nil
}

func (l *lshIndex) AddChunks(items []Item) error {
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

func (l *lshIndex) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dimension == 0 {
		l.built = true
		return nil
	}

	rng := rand.New(rand.NewSource(l.seed))
	l.planes = make([][]float64, l.numHashes)
	for i := range l.planes {
		plane := make([]float64, l.dimension)
		for j := range plane {
			plane[j] = rng.NormFloat64()
		}
		l.planes[i] = plane
	}

	l.tables = make([]map[uint64][]int, l.numHashes)
	for i := range l.tables {
		l.tables[i] = make(map[uint64][]int)
	}
	for pos, it := range l.items {
		for h, plane := range l.planes {
			bucket := l.bucketFor(plane, it.Embedding)
			l.tables[h][bucket] = append(l.tables[h][bucket], pos)
		}
	}
	l.built = true
	return nil
}

// bucketFor projects v onto plane and maps the resulting scalar to one of
// numBuckets buckets via a stable hash of the projection's float64 bit
// pattern. FNV-1a over the bit representation keeps bucket assignment
// reproducible across separate index instances built from the same
// embeddings and plane, not just within one process.
func (l *lshIndex) bucketFor(plane, v []float64) uint64 {
	var dot float64
	for i := range plane {
		dot += plane[i] * v[i]
	}
	bits := math.Float64bits(dot)
	buf := [8]byte{
		byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
		byte(bits >> 32), byte(bits >> 40), byte(bits >> 48), byte(bits >> 56),
	}
	h := fnv.New64a()
	h.Write(buf[:])
	return h.Sum64() % uint64(l.numBuckets)
}

func (l *lshIndex) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.dimension = 0
	l.planes = nil
	l.tables = nil
	l.built = false
}

func (l *lshIndex) IsBuilt() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.built
}

func (l *lshIndex) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *lshIndex) Search(query []float64, k int) ([]string, []float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.built {
		return nil, nil, ErrNotBuilt
	}
	if len(l.items) == 0 || k <= 0 {
		return []string{}, []float64{}, nil
	}
	if len(query) != l.dimension {
		return nil, nil, ErrDimensionMismatch
	}

	seen := make(map[int]bool)
	var candidates []int
	for h, plane := range l.planes {
		bucket := l.bucketFor(plane, query)
		for _, pos := range l.tables[h][bucket] {
			if !seen[pos] {
				seen[pos] = true
				candidates = append(candidates, pos)
			}
		}
	}

	scored := make([]scoredItem, len(candidates))
	for i, pos := range candidates {
		scored[i] = scoredItem{
			id:    l.items[pos].ID,
			score: CosineSimilarity(query, l.items[pos].Embedding),
			pos:   pos,
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].pos < scored[j].pos
	})
	if len(scored) > k {
		scored = scored[:k]
	}

	ids := make([]string, len(scored))
	scores := make([]float64, len(scored))
	for i, s := range scored {
		ids[i] = s.id
		scores[i] = s.score
	}
	return ids, scores, nil
}
