package server

import (
	"context"

	"github.com/fyrsmithlabs/ragd/internal/documents"
	"github.com/fyrsmithlabs/ragd/internal/retrieval"
	"github.com/fyrsmithlabs/ragd/internal/synthesis"
)

// DocumentStore is the metadata surface the handlers need.
type DocumentStore interface {
	Create(ctx context.Context, doc documents.Document) error
	Get(ctx context.Context, id string) (*documents.Document, error)
	List(ctx context.Context, skip, limit int) ([]documents.Document, error)
	ListProcessedIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[documents.Status]int, error)
}

// BlobStore stores and removes uploaded file contents.
type BlobStore interface {
	Save(originalName string, data []byte) (string, error)
	Remove(path string) error
}

// Ingestor queues documents for background indexing.
type Ingestor interface {
	Enqueue(documentID string) error
	QueueDepth() int
}

// Synthesizer generates an answer from retrieved chunks.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, chunks []retrieval.ScoredChunk) (*synthesis.Result, error)
}

// UploadResponse is the response body for POST /api/v1/documents/upload.
type UploadResponse struct {
	Document documents.Document `json:"document"`
	Message  string             `json:"message"`
}

// ListResponse is the response body for GET /api/v1/documents.
type ListResponse struct {
	Documents []documents.Document `json:"documents"`
	Total     int                  `json:"total"`
	Skip      int                  `json:"skip"`
	Limit     int                  `json:"limit"`
}

// QueryRequest is the request body for POST /api/v1/query.
type QueryRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
}

// QueryResponse is the response body for POST /api/v1/query.
type QueryResponse struct {
	Answer           string             `json:"answer"`
	Sources          []synthesis.Source `json:"sources"`
	Confidence       float32            `json:"confidence"`
	ModelUsed        string             `json:"model_used"`
	ChunksUsed       int                `json:"chunks_used"`
	ProcessingTimeMS int64              `json:"processing_time_ms"`
}

// StatsResponse is the response body for GET /api/v1/stats.
type StatsResponse struct {
	Documents   map[documents.Status]int `json:"documents"`
	TotalChunks int                      `json:"total_chunks"`
	QueueDepth  int                      `json:"queue_depth"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
