package service

import (
	"strings"

	"github.com/vecdbx/vecdb"
	"github.com/vecdbx/vecdb/pkg/filter"
)

// DocumentService validates and orchestrates document- and chunk-level
// operations.
type DocumentService struct {
	store *vecdb.Store
}

func NewDocumentService(store *vecdb.Store) *DocumentService {
	return &DocumentService{store: store}
}

type CreateDocumentRequest struct {
	Name     string
	Metadata vecdb.Metadata
	Chunks   []vecdb.NewChunk
}

// Create validates the document name and rejects a duplicate name within
// the same library before delegating to the store.
func (s *DocumentService) Create(libraryID string, req CreateDocumentRequest) (*vecdb.Document, error) {
	const op = "DocumentService.Create"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrEmptyName}
	}
	if len(name) > maxNameLength {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrNameTooLong}
	}

	existing, err := s.store.ListDocuments(libraryID)
	if err != nil {
		return nil, err
	}
	for _, d := range existing {
		if d.Name == name {
			return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindConflict, Err: vecdb.ErrDuplicateName}
		}
	}

	if err := validateNewChunks(op, req.Chunks); err != nil {
		return nil, err
	}

	doc := &vecdb.Document{Name: name, Metadata: req.Metadata, Chunks: toChunks(req.Chunks)}
	return s.store.CreateDocument(libraryID, doc)
}

func (s *DocumentService) Get(libraryID, documentID string) (*vecdb.Document, error) {
	return s.store.GetDocument(libraryID, documentID)
}

func (s *DocumentService) List(libraryID string) ([]*vecdb.Document, error) {
	return s.store.ListDocuments(libraryID)
}

type UpdateDocumentRequest struct {
	Name     *string
	Metadata vecdb.Metadata
}

// Update validates a rename against duplicate names in the same library
// (excluding the document being renamed) and rejects a no-op update.
func (s *DocumentService) Update(libraryID, documentID string, req UpdateDocumentRequest) (*vecdb.Document, error) {
	const op = "DocumentService.Update"

	if req.Name == nil && req.Metadata == nil {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrNoChangedFields}
	}

	upd := vecdb.DocumentUpdate{Metadata: req.Metadata}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrEmptyName}
		}
		if len(trimmed) > maxNameLength {
			return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrNameTooLong}
		}

		existing, err := s.store.ListDocuments(libraryID)
		if err != nil {
			return nil, err
		}
		for _, d := range existing {
			if d.ID != documentID && d.Name == trimmed {
				return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindConflict, Err: vecdb.ErrDuplicateName}
			}
		}
		upd.Name = &trimmed
	}

	return s.store.UpdateDocument(libraryID, documentID, upd)
}

func (s *DocumentService) Delete(libraryID, documentID string) error {
	return s.store.DeleteDocument(libraryID, documentID)
}

// AddChunks validates every chunk before appending: non-empty text,
// non-empty embedding, and (structurally guaranteed in Go by []float64)
// numeric values.
func (s *DocumentService) AddChunks(libraryID, documentID string, chunks []vecdb.NewChunk) ([]*vecdb.Chunk, error) {
	const op = "DocumentService.AddChunks"

	if len(chunks) == 0 {
		return nil, &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrEmptyEmbedding}
	}
	if err := validateNewChunks(op, chunks); err != nil {
		return nil, err
	}

	return s.store.AddChunksToDocument(libraryID, documentID, toChunks(chunks))
}

func validateNewChunks(op string, chunks []vecdb.NewChunk) error {
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			return &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrEmptyText}
		}
		if len(c.Embedding) == 0 {
			return &vecdb.StoreError{Op: op, Kind: vecdb.KindValidation, Err: vecdb.ErrEmptyEmbedding}
		}
	}
	return nil
}

func toChunks(in []vecdb.NewChunk) []*vecdb.Chunk {
	out := make([]*vecdb.Chunk, len(in))
	for i, c := range in {
		out[i] = &vecdb.Chunk{Text: c.Text, Embedding: c.Embedding, Metadata: c.Metadata}
	}
	return out
}

// FindByName does a case-insensitive substring match against document
// names.
func (s *DocumentService) FindByName(libraryID, query string) ([]*vecdb.Document, error) {
	docs, err := s.store.ListDocuments(libraryID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]*vecdb.Document, 0)
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Name), q) {
			out = append(out, d)
		}
	}
	return out, nil
}

// FindByMetadata applies the metadata predicate language to documents
// instead of chunks.
func (s *DocumentService) FindByMetadata(libraryID string, filters filter.Filters) ([]*vecdb.Document, error) {
	docs, err := s.store.ListDocuments(libraryID)
	if err != nil {
		return nil, err
	}
	out := make([]*vecdb.Document, 0)
	for _, d := range docs {
		if filter.Matches(d.Metadata, filters) {
			out = append(out, d)
		}
	}
	return out, nil
}
