package vectorstore

import "fmt"

// Chunk is a contiguous span of text extracted from one source
// document, created at ingest time and never mutated afterwards.
type Chunk struct {
	// DocumentID is the opaque identifier of the source document.
	DocumentID string

	// Index is the zero-based sequence position within the document.
	Index int

	// Content is the chunk text. Never empty.
	Content string

	// Filename is the source document's original filename.
	Filename string
}

// ExternalID returns the stable upsert key for this chunk.
func (c Chunk) ExternalID() string {
	return fmt.Sprintf("%s_%d", c.DocumentID, c.Index)
}

// SearchResult is a stored chunk plus its similarity score for one
// query. Transient; not persisted.
type SearchResult struct {
	// ID is the chunk's external id.
	ID string

	// Content is the chunk text.
	Content string

	// Score is the normalized similarity in [0,1], higher = more
	// relevant.
	Score float32

	// Metadata holds document_id, chunk_index and filename.
	Metadata map[string]interface{}
}

// Stats describes the store contents.
type Stats struct {
	// TotalChunks is the number of stored chunks across all documents.
	TotalChunks int `json:"total_chunks"`
}
