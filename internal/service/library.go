// Package service implements the validation and orchestration rules that
// sit between an external boundary (CLI, or any future RPC/HTTP adapter)
// and the concurrency-safe store: trimming and rejecting malformed input,
// detecting duplicate names, and translating store conditions into the
// vecdb error taxonomy.
package service

import (
	"strings"

	"github.com/vecdbx/vecdb"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 1000
)

// LibraryService validates and orchestrates library-level operations.
type LibraryService struct {
	store *vecdb.Store
}

func NewLibraryService(store *vecdb.Store) *LibraryService {
	return &LibraryService{store: store}
}

// CreateLibraryRequest is the caller-supplied shape for a new library.
type CreateLibraryRequest struct {
	Name        string
	Description string
	Metadata    vecdb.Metadata
}

// Create validates and creates a library. The name must be non-empty
// after trimming; the description, if present, must be 1-1000
// characters, enforced here rather than in the store.
func (s *LibraryService) Create(req CreateLibraryRequest) (*vecdb.Library, error) {
	const op = "LibraryService.Create"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrEmptyName}
	}
	if len(name) > maxNameLength {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrNameTooLong}
	}
	if req.Description != "" && len(req.Description) > maxDescriptionLength {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrDescriptionLength}
	}

	lib := &vecdb.Library{
		Name:        name,
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	return s.store.CreateLibrary(lib)
}

func (s *LibraryService) Get(id string) (*vecdb.Library, error) {
	return s.store.GetLibrary(id)
}

func (s *LibraryService) List() []*vecdb.Library {
	return s.store.ListLibraries()
}

// UpdateLibraryRequest carries optional new values; a nil pointer leaves
// that field unchanged. At least one field must be set.
type UpdateLibraryRequest struct {
	Name        *string
	Description *string
	Metadata    vecdb.Metadata
}

// Update validates and applies a partial update, rejecting a request that
// changes nothing at all.
func (s *LibraryService) Update(id string, req UpdateLibraryRequest) (*vecdb.Library, error) {
	const op = "LibraryService.Update"

	if req.Name == nil && req.Description == nil && req.Metadata == nil {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrNoChangedFields}
	}

	upd := vecdb.LibraryUpdate{Metadata: req.Metadata}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrEmptyName}
		}
		upd.Name = &trimmed
	}
	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLength {
			return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrDescriptionLength}
		}
		upd.Description = req.Description
	}

	return s.store.UpdateLibrary(id, upd)
}

func (s *LibraryService) Delete(id string) error {
	return s.store.DeleteLibrary(id)
}

// BuildIndexParams carries the optional `num_hashes`/`num_buckets` query
// parameters a `POST .../index` route accepts; zero means "use the
// store's configured default" and is only meaningful for LSH.
type BuildIndexParams struct {
	NumHashes  int
	NumBuckets int
}

// BuildIndex validates the requested index type (and, for LSH, its
// parameters) before delegating to the store.
func (s *LibraryService) BuildIndex(libraryID string, indexType vecdb.IndexType, params BuildIndexParams) error {
	const op = "LibraryService.BuildIndex"

	switch indexType {
	case vecdb.IndexLinear, vecdb.IndexKDTree, vecdb.IndexLSH:
	default:
		return &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrInvalidIndexType}
	}
	if indexType == vecdb.IndexLSH {
		if params.NumHashes < 0 || params.NumBuckets < 0 {
			return &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrInvalidLSHParams}
		}
	}

	return s.store.BuildIndex(libraryID, indexType, vecdb.IndexParams{
		NumHashes:  params.NumHashes,
		NumBuckets: params.NumBuckets,
	})
}

func (s *LibraryService) IndexInfo(libraryID string) (*vecdb.IndexInfo, error) {
	return s.store.GetIndexInfo(libraryID)
}

// AvailableIndexTypes returns the tradeoff descriptions for the CLI's
// "index-types" command.
func (s *LibraryService) AvailableIndexTypes() map[vecdb.IndexType]vecdb.IndexTypeInfo {
	return vecdb.DescribeIndexTypes()
}

// Stats reports library-scoped statistics.
type LibraryStats struct {
	LibraryID      string
	Name           string
	Description    string
	TotalDocuments int
	TotalChunks    int
	IndexInfo      *vecdb.IndexInfo
}

func (s *LibraryService) Stats(libraryID string) (*LibraryStats, error) {
	lib, err := s.store.GetLibrary(libraryID)
	if err != nil {
		return nil, err
	}
	info, err := s.store.GetIndexInfo(libraryID)
	if err != nil && vecdb.KindOf(err) != vecdb.KindPrecondition {
		return nil, err
	}
	return &LibraryStats{
		LibraryID:      lib.ID,
		Name:           lib.Name,
		Description:    lib.Description,
		TotalDocuments: len(lib.Documents),
		TotalChunks:    lib.TotalChunks(),
		IndexInfo:      info,
	}, nil
}
