package documents

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Status is the document processing state.
type Status string

const (
	// StatusUploaded means the file is stored but not yet indexed.
	StatusUploaded Status = "uploaded"

	// StatusProcessed means the document is chunked and indexed.
	StatusProcessed Status = "processed"

	// StatusFailed means ingestion failed; Error holds the reason.
	StatusFailed Status = "failed"
)

// Document is an uploaded document's metadata record.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StoragePath string    `json:"-"`
	Status      Status    `json:"status"`
	PageCount   int       `json:"page_count,omitempty"`
	ChunkCount  int       `json:"chunk_count"`
	Error       string    `json:"error,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ProcessedAt time.Time `json:"processed_at,omitzero"`
}
