package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// qdrantTracer for OpenTelemetry instrumentation.
var qdrantTracer = otel.Tracer("ragd.vectorstore.qdrant")

// QdrantConfig holds configuration for the Qdrant gRPC client.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	// Default: "localhost"
	Host string

	// Port is the Qdrant gRPC port (NOT the HTTP REST port).
	// Default: 6334
	Port int

	// Collection is the collection holding all chunks.
	// Default: "document_chunks"
	Collection string

	// VectorSize is the embedding dimensionality. MUST match the
	// Embedder's output dimension.
	VectorSize uint64

	// APIKey authenticates against managed Qdrant deployments.
	// Empty for unauthenticated local instances.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// MaxRetries is the retry budget for transient failures.
	// Default: 3
	MaxRetries int

	// RetryBackoff is the initial backoff, doubled per retry.
	// Default: 1 second
	RetryBackoff time.Duration

	// MaxMessageSize is the maximum gRPC message size in bytes.
	// Default: 50MB
	MaxMessageSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "document_chunks"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = time.Second
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 50 * 1024 * 1024
	}
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
	}
	if c.VectorSize == 0 {
		return fmt.Errorf("%w: vector size required", ErrInvalidConfig)
	}
	return nil
}

// IsTransientError reports whether an error should be retried.
// Network timeouts and temporary unavailability are transient; invalid
// arguments, not-found and permission errors are not.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case grpccodes.Unavailable, grpccodes.DeadlineExceeded, grpccodes.Aborted, grpccodes.ResourceExhausted:
		return true
	default:
		return false
	}
}

// QdrantStore implements Store using Qdrant's native gRPC client.
//
// Binary protobuf transport avoids the HTTP REST payload limits that
// large documents hit during ingest. All chunks live in one collection
// with the owning document id in the payload for filtering.
type QdrantStore struct {
	client *qdrant.Client
	config QdrantConfig

	embedder Embedder
	logger   *zap.Logger
}

// NewQdrantStore creates a QdrantStore, connects, health-checks the
// server and ensures the collection exists.
func NewQdrantStore(config QdrantConfig, embedder Embedder, logger *zap.Logger) (*QdrantStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
				grpc.MaxCallSendMsgSize(config.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	s := &QdrantStore{
		client:   client,
		config:   config,
		embedder: embedder,
		logger:   logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: health check: %v", ErrConnectionFailed, err)
	}
	if err := s.ensureCollection(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("qdrant vector store initialized",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("collection", config.Collection))

	return s, nil
}

// ensureCollection creates the chunk collection if it does not exist.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	_, err := s.client.GetCollectionInfo(ctx, s.config.Collection)
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); !ok || st.Code() != grpccodes.NotFound {
		return fmt.Errorf("checking collection %s: %w", s.config.Collection, err)
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.config.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.config.Collection, err)
	}
	return nil
}

// retryOperation retries an operation with exponential backoff on
// transient errors.
func (s *QdrantStore) retryOperation(ctx context.Context, name string, op func() error) error {
	backoff := s.config.RetryBackoff
	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransientError(err) {
			return fmt.Errorf("%s failed (permanent): %w", name, err)
		}
		if attempt == s.config.MaxRetries {
			return fmt.Errorf("%s failed after %d retries: %w", name, s.config.MaxRetries, err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", name, ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// pointID derives a deterministic Qdrant point UUID from a chunk's
// external id, making re-ingest an overwrite instead of a duplicate.
func pointID(externalID string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(externalID)).String())
}

// AddChunks embeds and upserts chunks keyed by their external id.
func (s *QdrantStore) AddChunks(ctx context.Context, chunks []Chunk) ([]string, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.AddChunks")
	defer span.End()
	span.SetAttributes(
		attribute.Int("chunk_count", len(chunks)),
		attribute.String("collection", s.config.Collection),
	)

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

	points := make([]*qdrant.PointStruct, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ExternalID()
		points[i] = &qdrant.PointStruct{
			Id:      pointID(ids[i]),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: map[string]*qdrant.Value{
				"id":          qdrant.NewValueString(ids[i]),
				"content":     qdrant.NewValueString(c.Content),
				"document_id": qdrant.NewValueString(c.DocumentID),
				"chunk_index": qdrant.NewValueInt(int64(c.Index)),
				"filename":    qdrant.NewValueString(c.Filename),
			},
		}
	}

	err = s.retryOperation(ctx, "upsert", func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.config.Collection,
			Points:         points,
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	span.SetAttributes(attribute.Int("points_added", len(ids)))
	span.SetStatus(codes.Ok, "success")
	return ids, nil
}

// Search returns up to topK chunks by descending similarity, optionally
// restricted to the given document ids.
func (s *QdrantStore) Search(ctx context.Context, question string, topK int, documentIDs []string) ([]SearchResult, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.Search")
	defer span.End()
	span.SetAttributes(
		attribute.Int("top_k", topK),
		attribute.Int("document_filter_count", len(documentIDs)),
	)

	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	var filter *qdrant.Filter
	if len(documentIDs) > 0 {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchKeywords("document_id", documentIDs...),
			},
		}
	}

	var points []*qdrant.ScoredPoint
	err = s.retryOperation(ctx, "search", func() error {
		res, err := s.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: s.config.Collection,
			Query:          qdrant.NewQuery(queryVector...),
			Limit:          qdrant.PtrOf(uint64(topK)),
			WithPayload:    qdrant.NewWithPayload(true),
			Filter:         filter,
		})
		if err != nil {
			return err
		}
		points = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	results := make([]SearchResult, len(points))
	for i, p := range points {
		score := p.Score
		if score < 0 {
			score = 0
		}
		r := SearchResult{Score: score, Metadata: make(map[string]interface{})}
		for k, v := range p.Payload {
			switch val := v.Kind.(type) {
			case *qdrant.Value_StringValue:
				r.Metadata[k] = val.StringValue
				switch k {
				case "content":
					r.Content = val.StringValue
				case "id":
					r.ID = val.StringValue
				}
			case *qdrant.Value_IntegerValue:
				r.Metadata[k] = val.IntegerValue
			case *qdrant.Value_DoubleValue:
				r.Metadata[k] = val.DoubleValue
			case *qdrant.Value_BoolValue:
				r.Metadata[k] = val.BoolValue
			}
		}
		results[i] = r
	}

	span.SetAttributes(attribute.Int("results_count", len(results)))
	span.SetStatus(codes.Ok, "success")
	return results, nil
}

// DeleteByDocument removes every chunk belonging to documentID. Qdrant
// applies the filtered delete atomically per call.
func (s *QdrantStore) DeleteByDocument(ctx context.Context, documentID string) error {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.DeleteByDocument")
	defer span.End()
	span.SetAttributes(attribute.String("document_id", documentID))

	if documentID == "" {
		return fmt.Errorf("document id cannot be empty")
	}

	err := s.retryOperation(ctx, "delete", func() error {
		_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: s.config.Collection,
			Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
				Must: []*qdrant.Condition{
					qdrant.NewMatch("document_id", documentID),
				},
			}),
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// Stats reports the stored chunk count.
func (s *QdrantStore) Stats(ctx context.Context) (*Stats, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.Stats")
	defer span.End()

	var stats *Stats
	err := s.retryOperation(ctx, "stats", func() error {
		info, err := s.client.GetCollectionInfo(ctx, s.config.Collection)
		if err != nil {
			return err
		}
		count := 0
		if info.PointsCount != nil {
			count = int(*info.PointsCount)
		}
		stats = &Stats{TotalChunks: count}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	span.SetAttributes(attribute.Int("total_chunks", stats.TotalChunks))
	return stats, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Ensure QdrantStore implements Store.
var _ Store = (*QdrantStore)(nil)
