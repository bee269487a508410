package vecdb

import "time"

// IndexType names one of the three supported index strategies. The zero
// value (IndexNone) means the library has never had an index built.
type IndexType string

const (
	IndexNone   IndexType = ""
	IndexLinear IndexType = "linear"
	IndexKDTree IndexType = "kdtree"
	IndexLSH    IndexType = "lsh"
)

// valid reports whether t is one of the three supported strategies (an
// unset IndexNone is valid as a library's current state, but not as a
// BuildIndex argument).
func (t IndexType) valid() bool {
	switch t {
	case IndexLinear, IndexKDTree, IndexLSH:
		return true
	default:
		return false
	}
}

// Metadata is a mapping from string keys to JSON-scalar or JSON-array
// values, attached to any of the three entities.
type Metadata map[string]interface{}

// Chunk is the atomic unit of retrieval: text, its embedding, and
// metadata.
type Chunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewChunk is the caller-supplied shape for chunks not yet assigned an ID
// or timestamps, used by the document service's AddChunks and by its
// Create when the document is created with chunks attached.
type NewChunk struct {
	Text      string
	Embedding []float64
	Metadata  Metadata
}

// Document is a named, ordered container of chunks within a library.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	Chunks    []*Chunk  `json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Library is the top-level collection and the unit of indexing: an
// ordered set of documents plus the index built over their chunks.
type Library struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Metadata     Metadata   `json:"metadata,omitempty"`
	Documents    []*Document `json:"documents"`
	IndexType    IndexType  `json:"index_type,omitempty"`
	IndexBuiltAt *time.Time `json:"index_built_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TotalChunks counts every chunk across every document.
func (l *Library) TotalChunks() int {
	n := 0
	for _, d := range l.Documents {
		n += len(d.Chunks)
	}
	return n
}

// dimension returns the embedding dimension of the first chunk found, and
// 0 if the library has no chunks yet. All chunks added to a library must
// share this dimension.
func (l *Library) dimension() int {
	for _, d := range l.Documents {
		for _, c := range d.Chunks {
			return len(c.Embedding)
		}
	}
	return 0
}

// dimensionExcluding is dimension, but ignores chunks belonging to the
// named document — used when that document's chunks are about to be
// wholesale replaced, so the replacement is checked against every other
// document's dimension rather than the one it is displacing.
func (l *Library) dimensionExcluding(documentID string) int {
	for _, d := range l.Documents {
		if d.ID == documentID {
			continue
		}
		for _, c := range d.Chunks {
			return len(c.Embedding)
		}
	}
	return 0
}

// allChunks flattens every chunk in the library in document/insertion
// order, the order the index contract and its tie-breaking rule depend on.
func (l *Library) allChunks() []*Chunk {
	chunks := make([]*Chunk, 0, l.TotalChunks())
	for _, d := range l.Documents {
		chunks = append(chunks, d.Chunks...)
	}
	return chunks
}

func (l *Library) findDocument(id string) *Document {
	for _, d := range l.Documents {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (l *Library) documentIndex(id string) int {
	for i, d := range l.Documents {
		if d.ID == id {
			return i
		}
	}
	return -1
}
