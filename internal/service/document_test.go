package service

import (
	"strings"
	"testing"

	"github.com/vecdbx/vecdb"
	"github.com/vecdbx/vecdb/pkg/filter"
)

func TestDocumentServiceCreateRejectsDuplicateName(t *testing.T) {
	store := newTestStore(t)
	libSvc := NewLibraryService(store)
	docSvc := NewDocumentService(store)

	lib, _ := libSvc.Create(CreateLibraryRequest{Name: "L"})
	if _, err := docSvc.Create(lib.ID, CreateDocumentRequest{Name: "intro"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := docSvc.Create(lib.ID, CreateDocumentRequest{Name: "intro"}); vecdb.KindOf(err) != vecdb.KindConflict {
		t.Errorf("expected KindConflict for a duplicate document name, got %v", err)
	}

	if _, err := docSvc.Create(lib.ID, CreateDocumentRequest{Name: "  "}); vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected KindValidation for an empty name, got %v", err)
	}
}

func TestDocumentServiceCreateRejectsNameOverMaxLength(t *testing.T) {
	store := newTestStore(t)
	libSvc := NewLibraryService(store)
	docSvc := NewDocumentService(store)
	lib, _ := libSvc.Create(CreateLibraryRequest{Name: "L"})

	if _, err := docSvc.Create(lib.ID, CreateDocumentRequest{Name: strings.Repeat("a", 256)}); vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected KindValidation for a 256-character document name, got %v", err)
	}
}

func TestDocumentServiceCreateValidatesChunks(t *testing.T) {
	store := newTestStore(t)
	libSvc := NewLibraryService(store)
	docSvc := NewDocumentService(store)
	lib, _ := libSvc.Create(CreateLibraryRequest{Name: "L"})

	_, err := docSvc.Create(lib.ID, CreateDocumentRequest{
		Name:   "doc",
		Chunks: []vecdb.NewChunk{{Text: "", Embedding: []float64{1, 2}}},
	})
	if vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected KindValidation for empty chunk text, got %v", err)
	}

	_, err = docSvc.Create(lib.ID, CreateDocumentRequest{
		Name:   "doc2",
		Chunks: []vecdb.NewChunk{{Text: "hello", Embedding: nil}},
	})
	if vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected KindValidation for an empty embedding, got %v", err)
	}
}

func TestDocumentServiceUpdateRejectsDuplicateNameExcludingSelf(t *testing.T) {
	store := newTestStore(t)
	libSvc := NewLibraryService(store)
	docSvc := NewDocumentService(store)
	lib, _ := libSvc.Create(CreateLibraryRequest{Name: "L"})
	a, _ := docSvc.Create(lib.ID, CreateDocumentRequest{Name: "a"})
	_, _ = docSvc.Create(lib.ID, CreateDocumentRequest{Name: "b"})

	// Renaming a to its own current name must not be rejected as a
	// duplicate of itself.
	sameName := "a"
	if _, err := docSvc.Update(lib.ID, a.ID, UpdateDocumentRequest{Name: &sameName}); err != nil {
		t.Errorf("renaming a document to its own name should succeed: %v", err)
	}

	clash := "b"
	if _, err := docSvc.Update(lib.ID, a.ID, UpdateDocumentRequest{Name: &clash}); vecdb.KindOf(err) != vecdb.KindConflict {
		t.Errorf("expected KindConflict when renaming into an existing name, got %v", err)
	}

	if _, err := docSvc.Update(lib.ID, a.ID, UpdateDocumentRequest{}); vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected KindValidation for a no-op update, got %v", err)
	}
}

func TestDocumentServiceAddChunksValidatesAndAppends(t *testing.T) {
	store := newTestStore(t)
	libSvc := NewLibraryService(store)
	docSvc := NewDocumentService(store)
	lib, _ := libSvc.Create(CreateLibraryRequest{Name: "L"})
	doc, _ := docSvc.Create(lib.ID, CreateDocumentRequest{Name: "doc"})

	if _, err := docSvc.AddChunks(lib.ID, doc.ID, nil); vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected KindValidation for an empty chunk batch, got %v", err)
	}

	chunks, err := docSvc.AddChunks(lib.ID, doc.ID, []vecdb.NewChunk{
		{Text: "hello", Embedding: []float64{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID == "" {
		t.Fatalf("expected one chunk with an assigned ID, got %+v", chunks)
	}
}

func TestDocumentServiceFindByNameIsCaseInsensitiveSubstring(t *testing.T) {
	store := newTestStore(t)
	libSvc := NewLibraryService(store)
	docSvc := NewDocumentService(store)
	lib, _ := libSvc.Create(CreateLibraryRequest{Name: "L"})
	docSvc.Create(lib.ID, CreateDocumentRequest{Name: "Quarterly Report"})
	docSvc.Create(lib.ID, CreateDocumentRequest{Name: "Meeting Notes"})

	found, err := docSvc.FindByName(lib.ID, "report")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Quarterly Report" {
		t.Fatalf("expected a single case-insensitive substring match, got %+v", found)
	}
}

func TestDocumentServiceFindByMetadataAppliesEqualityFilter(t *testing.T) {
	store := newTestStore(t)
	libSvc := NewLibraryService(store)
	docSvc := NewDocumentService(store)
	lib, _ := libSvc.Create(CreateLibraryRequest{Name: "L"})
	docSvc.Create(lib.ID, CreateDocumentRequest{Name: "en-doc", Metadata: vecdb.Metadata{"lang": "en"}})
	docSvc.Create(lib.ID, CreateDocumentRequest{Name: "fr-doc", Metadata: vecdb.Metadata{"lang": "fr"}})

	found, err := docSvc.FindByMetadata(lib.ID, filter.Filters{"lang": "en"})
	if err != nil {
		t.Fatalf("FindByMetadata: %v", err)
	}
	if len(found) != 1 || found[0].Name != "en-doc" {
		t.Fatalf("expected a single equality match, got %+v", found)
	}
}
