package index

import "testing"

func TestLSHIndexFindsExactDuplicate(t *testing.T) {
	idx, err := newLSHIndex(Params{NumHashes: 12, NumBuckets: 8, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}

	items := []Item{
		{ID: "target", Embedding: []float64{1, 0, 0, 0}},
		{ID: "near", Embedding: []float64{0.95, 0.05, 0, 0}},
		{ID: "far", Embedding: []float64{0, 0, 0, 1}},
	}
	if err := idx.AddChunks(items); err != nil {
		t.Fatal(err)
	}
	if err := idx.Build(); err != nil {
		t.Fatal(err)
	}

	ids, _, err := idx.Search([]float64{1, 0, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}

	found := make(map[string]bool, len(ids))
	for _, id := range ids {
		found[id] = true
	}
	if !found["target"] {
		t.Errorf("expected the exact match to be a candidate, got %v", ids)
	}
}

func TestLSHIndexDefaultsOnZeroParams(t *testing.T) {
	idx, err := newLSHIndex(Params{})
	if err != nil {
		t.Fatal(err)
	}
	if idx.numHashes <= 0 || idx.numBuckets <= 0 {
		t.Fatalf("expected positive defaults, got hashes=%d buckets=%d", idx.numHashes, idx.numBuckets)
	}
}

func TestLSHIndexSearchBeforeBuild(t *testing.T) {
	idx, err := newLSHIndex(Params{})
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.AddChunks([]Item{{ID: "a", Embedding: []float64{1, 2}}}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := idx.Search([]float64{1, 2}, 1); err != ErrNotBuilt {
		t.Fatalf("expected ErrNotBuilt, got %v", err)
	}
}

func TestLSHIndexReproducibleWithSeed(t *testing.T) {
	build := func() []string {
		idx, err := newLSHIndex(Params{NumHashes: 6, NumBuckets: 4, Seed: 7})
		if err != nil {
			t.Fatal(err)
		}
		idx.AddChunks([]Item{
			{ID: "a", Embedding: []float64{1, 2, 3}},
			{ID: "b", Embedding: []float64{3, 2, 1}},
		})
		idx.Build()
		ids, _, err := idx.Search([]float64{1, 2, 3}, 2)
		if err != nil {
			t.Fatal(err)
		}
		return ids
	}

	first := build()
	second := build()
	if len(first) != len(second) {
		t.Fatalf("expected reproducible candidate counts, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected reproducible ordering with a fixed seed, got %v vs %v", first, second)
		}
	}
}
