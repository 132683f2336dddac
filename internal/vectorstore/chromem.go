package vectorstore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// chromemTracer for OpenTelemetry instrumentation.
var chromemTracer = otel.Tracer("ragd.vectorstore.chromem")

// ChromemConfig holds configuration for the embedded chromem-go store.
type ChromemConfig struct {
	// Path is the directory for persistent storage. Empty means
	// in-memory only (used by tests).
	Path string

	// Compress enables gzip compression for stored data.
	Compress bool

	// Collection is the collection name.
	// Default: "document_chunks"
	Collection string
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "document_chunks"
	}
}

// ChromemStore implements Store using chromem-go.
//
// chromem-go is an embeddable pure-Go vector database with optional
// gob persistence; no external service is needed. A single collection
// holds every chunk, with the owning document id kept in metadata for
// filtering and deletion.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
	config     ChromemConfig
	logger     *zap.Logger
}

// NewChromemStore creates a ChromemStore with the given configuration.
func NewChromemStore(config ChromemConfig, embedder Embedder, logger *zap.Logger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()

	var db *chromem.DB
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(config.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", config.Path, err)
		}
		var err error
		db, err = chromem.NewPersistentDB(config.Path, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		}
	}

	// chromem uses this to embed query text it has no vector for; all
	// document vectors are supplied explicitly in AddChunks.
	embedFn := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(config.Collection, nil, embedFn)
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", config.Collection, err)
	}

	logger.Info("chromem vector store initialized",
		zap.String("path", config.Path),
		zap.String("collection", config.Collection),
		zap.Int("chunks", collection.Count()))

	return &ChromemStore{
		db:         db,
		collection: collection,
		embedder:   embedder,
		config:     config,
		logger:     logger,
	}, nil
}

// AddChunks embeds and upserts chunks keyed by their external id.
func (s *ChromemStore) AddChunks(ctx context.Context, chunks []Chunk) ([]string, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.AddChunks")
	defer span.End()
	span.SetAttributes(attribute.Int("chunk_count", len(chunks)))

	if len(chunks) == 0 {
		return nil, ErrEmptyChunks
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", ErrEmbeddingFailed, len(embeddings), len(chunks))
	}

	docs := make([]chromem.Document, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ExternalID()
		docs[i] = chromem.Document{
			ID:        ids[i],
			Content:   c.Content,
			Embedding: embeddings[i],
			Metadata: map[string]string{
				"document_id": c.DocumentID,
				"chunk_index": strconv.Itoa(c.Index),
				"filename":    c.Filename,
			},
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: adding documents: %v", ErrStoreUnavailable, err)
	}

	span.SetStatus(codes.Ok, "success")
	return ids, nil
}

// Search returns up to topK chunks by descending similarity, optionally
// restricted to the given document ids.
func (s *ChromemStore) Search(ctx context.Context, question string, topK int, documentIDs []string) ([]SearchResult, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Search")
	defer span.End()
	span.SetAttributes(
		attribute.Int("top_k", topK),
		attribute.Int("document_filter_count", len(documentIDs)),
	)

	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	total := s.collection.Count()
	if total == 0 {
		return []SearchResult{}, nil
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	// chromem rejects nResults above the collection size.
	n := topK
	if n > total {
		n = total
	}

	var raw []chromem.Result
	if len(documentIDs) == 0 {
		raw, err = s.collection.QueryEmbedding(ctx, queryVector, n, nil, nil)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%w: query: %v", ErrStoreUnavailable, err)
		}
	} else {
		// chromem metadata filters are single-valued; query per
		// document and merge.
		for _, id := range documentIDs {
			res, qerr := s.collection.QueryEmbedding(ctx, queryVector, n,
				map[string]string{"document_id": id}, nil)
			if qerr != nil {
				span.RecordError(qerr)
				span.SetStatus(codes.Error, qerr.Error())
				return nil, fmt.Errorf("%w: query document %s: %v", ErrStoreUnavailable, id, qerr)
			}
			raw = append(raw, res...)
		}
		sort.SliceStable(raw, func(i, j int) bool { return raw[i].Similarity > raw[j].Similarity })
		if len(raw) > topK {
			raw = raw[:topK]
		}
	}

	results := make([]SearchResult, len(raw))
	for i, r := range raw {
		score := r.Similarity
		if score < 0 {
			score = 0
		}
		metadata := make(map[string]interface{}, len(r.Metadata))
		for k, v := range r.Metadata {
			metadata[k] = v
		}
		results[i] = SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Score:    score,
			Metadata: metadata,
		}
	}

	span.SetAttributes(attribute.Int("results_count", len(results)))
	span.SetStatus(codes.Ok, "success")
	return results, nil
}

// DeleteByDocument removes every chunk belonging to documentID.
func (s *ChromemStore) DeleteByDocument(ctx context.Context, documentID string) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.DeleteByDocument")
	defer span.End()
	span.SetAttributes(attribute.String("document_id", documentID))

	if documentID == "" {
		return fmt.Errorf("document id cannot be empty")
	}

	err := s.collection.Delete(ctx, map[string]string{"document_id": documentID}, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: delete document %s: %v", ErrStoreUnavailable, documentID, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// Stats reports the stored chunk count.
func (s *ChromemStore) Stats(ctx context.Context) (*Stats, error) {
	_, span := chromemTracer.Start(ctx, "ChromemStore.Stats")
	defer span.End()

	stats := &Stats{TotalChunks: s.collection.Count()}
	span.SetAttributes(attribute.Int("total_chunks", stats.TotalChunks))
	return stats, nil
}

// Close is a no-op; chromem persists writes as they happen.
func (s *ChromemStore) Close() error {
	return nil
}

// Ensure ChromemStore implements Store.
var _ Store = (*ChromemStore)(nil)
