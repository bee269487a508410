package service

import (
	"strings"
	"testing"

	"github.com/vecdbx/vecdb"
)

func newTestStore(t *testing.T) *vecdb.Store {
	t.Helper()
	return vecdb.NewStore(vecdb.Config{DefaultIndex: vecdb.IndexLinear, LSHNumHashes: 4, LSHNumBuckets: 8}, nil)
}

func TestLibraryServiceCreateValidation(t *testing.T) {
	svc := NewLibraryService(newTestStore(t))

	if _, err := svc.Create(CreateLibraryRequest{Name: "  "}); vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected validation error for an empty (whitespace-only) name, got %v", err)
	}

	lib, err := svc.Create(CreateLibraryRequest{Name: "  Docs  ", Description: "d"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if lib.Name != "Docs" {
		t.Errorf("expected the name to be trimmed, got %q", lib.Name)
	}
}

func TestLibraryServiceCreateRejectsNameOverMaxLength(t *testing.T) {
	svc := NewLibraryService(newTestStore(t))

	if _, err := svc.Create(CreateLibraryRequest{Name: strings.Repeat("a", 255)}); err != nil {
		t.Errorf("a 255-character name should be accepted, got %v", err)
	}
	if _, err := svc.Create(CreateLibraryRequest{Name: strings.Repeat("a", 256)}); vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected KindValidation for a 256-character name, got %v", err)
	}
}

func TestLibraryServiceUpdateRejectsNoChangedFields(t *testing.T) {
	svc := NewLibraryService(newTestStore(t))
	lib, _ := svc.Create(CreateLibraryRequest{Name: "L"})

	if _, err := svc.Update(lib.ID, UpdateLibraryRequest{}); vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected KindValidation for a no-op update, got %v", err)
	}

	newName := "Renamed"
	updated, err := svc.Update(lib.ID, UpdateLibraryRequest{Name: &newName})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("expected name to be updated, got %q", updated.Name)
	}
}

func TestLibraryServiceBuildIndexValidatesType(t *testing.T) {
	svc := NewLibraryService(newTestStore(t))
	lib, _ := svc.Create(CreateLibraryRequest{Name: "L"})

	if err := svc.BuildIndex(lib.ID, vecdb.IndexType("bogus"), BuildIndexParams{}); vecdb.KindOf(err) != vecdb.KindValidation {
		t.Errorf("expected KindValidation for an invalid index type, got %v", err)
	}

	if err := svc.BuildIndex(lib.ID, vecdb.IndexLSH, BuildIndexParams{NumHashes: 4, NumBuckets: 8}); err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	info, err := svc.IndexInfo(lib.ID)
	if err != nil {
		t.Fatalf("IndexInfo: %v", err)
	}
	if info.Type != vecdb.IndexLSH {
		t.Errorf("expected IndexLSH, got %v", info.Type)
	}
}

func TestLibraryServiceStats(t *testing.T) {
	libSvc := NewLibraryService(newTestStore(t))
	lib, _ := libSvc.Create(CreateLibraryRequest{Name: "L"})

	stats, err := libSvc.Stats(lib.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Name != "L" || stats.TotalDocuments != 0 || stats.TotalChunks != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestLibraryServiceAvailableIndexTypes(t *testing.T) {
	svc := NewLibraryService(newTestStore(t))
	types := svc.AvailableIndexTypes()
	for _, want := range []vecdb.IndexType{vecdb.IndexLinear, vecdb.IndexKDTree, vecdb.IndexLSH} {
		if _, ok := types[want]; !ok {
			t.Errorf("expected index-type info for %q", want)
		}
	}
}
