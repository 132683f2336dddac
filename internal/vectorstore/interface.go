package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the store backend is unreachable.
	ErrConnectionFailed = errors.New("failed to connect to vector store")

	// ErrStoreUnavailable indicates a backend failure during an
	// operation. Not retried by callers.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrEmptyChunks indicates empty or nil chunks.
	ErrEmptyChunks = errors.New("empty or nil chunks")
)

// Embedder generates vector embeddings from text.
//
// Every call within a deployment returns vectors of the same fixed
// dimension. Implementations may be slow (network or model inference);
// callers must pass a context and must not assume completion is
// instant.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one per
	// input text.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query. Some models
	// optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for chunk storage and similarity search.
//
// The interface is transport-agnostic; implementations delegate
// concurrency control to the backing engine. DeleteByDocument must
// appear atomic to concurrent readers: a search either sees all of a
// document's chunks or none of them.
type Store interface {
	// AddChunks embeds and stores chunks. The chunk's external id
	// (documentID plus chunk index) is the stable upsert key: adding
	// the same chunk twice replaces rather than duplicates.
	//
	// Returns the external ids of the stored chunks.
	AddChunks(ctx context.Context, chunks []Chunk) ([]string, error)

	// Search embeds the question and returns up to topK chunks ordered
	// by descending similarity score in [0,1], higher = more relevant.
	// When documentIDs is non-empty only chunks from those documents
	// are eligible. An empty or fully filtered-out index yields an
	// empty result, never an error.
	Search(ctx context.Context, question string, topK int, documentIDs []string) ([]SearchResult, error)

	// DeleteByDocument removes every chunk whose document id matches.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Stats reports the total number of stored chunks.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases backend resources.
	Close() error
}
