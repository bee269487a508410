package index

import "testing"

func TestKDTreeIndexFindsExactMatch(t *testing.T) {
	idx := newKDTreeIndex()
	items := []Item{
		{ID: "a", Embedding: []float64{0, 0}},
		{ID: "b", Embedding: []float64{10, 10}},
		{ID: "c", Embedding: []float64{1, 1}},
		{ID: "d", Embedding: []float64{-5, -5}},
		{ID: "e", Embedding: []float64{5, -5}},
	}
	if err := idx.AddChunks(items); err != nil {
		t.Fatal(err)
	}
	if err := idx.Build(); err != nil {
		t.Fatal(err)
	}

	ids, _, err := idx.Search([]float64{0, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("expected [a], got %v", ids)
	}
}

func TestKDTreeIndexEmpty(t *testing.T) {
	idx := newKDTreeIndex()
	if err := idx.Build(); err != nil {
		t.Fatal(err)
	}
	ids, scores, err := idx.Search([]float64{1, 2}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 || len(scores) != 0 {
		t.Fatalf("expected no results on an empty index, got %v", ids)
	}
}

func TestKDTreeIndexSearchBeforeBuild(t *testing.T) {
	idx := newKDTreeIndex()
	if err := idx.AddChunks([]Item{{ID: "a", Embedding: []float64{1, 2}}}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := idx.Search([]float64{1, 2}, 1); err != ErrNotBuilt {
		t.Fatalf("expected ErrNotBuilt, got %v", err)
	}
}

func TestKDTreeIndexRespectsK(t *testing.T) {
	idx := newKDTreeIndex()
	for i := 0; i < 20; i++ {
		idx.AddChunks([]Item{{ID: string(rune('a' + i)), Embedding: []float64{float64(i), float64(i)}}})
	}
	if err := idx.Build(); err != nil {
		t.Fatal(err)
	}
	ids, _, err := idx.Search([]float64{0, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) > 5 {
		t.Fatalf("expected at most 5 results, got %d", len(ids))
	}
}
