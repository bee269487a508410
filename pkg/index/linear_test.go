package index

import "testing"

func TestLinearIndexBasic(t *testing.T) {
	idx := newLinearIndex()

	items := []Item{
		{ID: "a", Embedding: []float64{1, 0, 0}},
		{ID: "b", Embedding: []float64{0, 1, 0}},
		{ID: "c", Embedding: []float64{0.9, 0.1, 0}},
	}
	if err := idx.AddChunks(items); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	if err := idx.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !idx.IsBuilt() {
		t.Fatal("expected IsBuilt to be true after Build")
	}
	if idx.Size() != 3 {
		t.Fatalf("expected size 3, got %d", idx.Size())
	}

	ids, scores, err := idx.Search([]float64{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ids))
	}
	if ids[0] != "a" {
		t.Errorf("expected closest match to be %q, got %q", "a", ids[0])
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			t.Errorf("scores not descending: %v", scores)
		}
	}
}

func TestLinearIndexTieBreakIsInsertionOrder(t *testing.T) {
	idx := newLinearIndex()
	items := []Item{
		{ID: "first", Embedding: []float64{1, 0}},
		{ID: "second", Embedding: []float64{1, 0}},
		{ID: "third", Embedding: []float64{1, 0}},
	}
	if err := idx.AddChunks(items); err != nil {
		t.Fatal(err)
	}
	if err := idx.Build(); err != nil {
		t.Fatal(err)
	}

	ids, _, err := idx.Search([]float64{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "first" || ids[1] != "second" {
		t.Fatalf("expected [first second] on an exact tie, got %v", ids)
	}
}

func TestLinearIndexSearchBeforeBuild(t *testing.T) {
	idx := newLinearIndex()
	if _, _, err := idx.Search([]float64{1}, 1); err != ErrNotBuilt {
		t.Fatalf("expected ErrNotBuilt, got %v", err)
	}
}

func TestLinearIndexDimensionMismatch(t *testing.T) {
	idx := newLinearIndex()
	if err := idx.AddChunks([]Item{{ID: "a", Embedding: []float64{1, 2, 3}}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddChunks([]Item{{ID: "b", Embedding: []float64{1, 2}}}); err != ErrDimensionMismatch {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestLinearIndexReset(t *testing.T) {
	idx := newLinearIndex()
	if err := idx.AddChunks([]Item{{ID: "a", Embedding: []float64{1}}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Build(); err != nil {
		t.Fatal(err)
	}
	idx.Reset()
	if idx.Size() != 0 || idx.IsBuilt() {
		t.Fatal("expected Reset to clear items and built flag")
	}
}
