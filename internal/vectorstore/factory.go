package vectorstore

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Provider identifies a vector store backend.
type Provider string

const (
	// ProviderChromem is the embedded chromem-go store (default).
	ProviderChromem Provider = "chromem"

	// ProviderQdrant is an external Qdrant server over gRPC.
	ProviderQdrant Provider = "qdrant"
)

// FactoryConfig selects and configures a store backend.
type FactoryConfig struct {
	// Provider is "chromem" or "qdrant". Default: "chromem".
	Provider Provider

	// Path is the chromem persistence directory.
	Path string

	// Collection is the collection name for either backend.
	Collection string

	// Host/Port select the Qdrant gRPC endpoint.
	Host string
	Port int

	// VectorSize is the embedding dimension (qdrant only; chromem
	// infers it from the first vector).
	VectorSize uint64

	// APIKey authenticates against managed qdrant deployments.
	APIKey string

	// UseTLS enables TLS for the qdrant connection.
	UseTLS bool

	// RetryBackoff is the initial qdrant retry backoff.
	RetryBackoff time.Duration
}

// NewStore creates the configured Store implementation.
func NewStore(cfg FactoryConfig, embedder Embedder, logger *zap.Logger) (Store, error) {
	switch cfg.Provider {
	case ProviderChromem, "":
		return NewChromemStore(ChromemConfig{
			Path:       cfg.Path,
			Collection: cfg.Collection,
		}, embedder, logger)
	case ProviderQdrant:
		return NewQdrantStore(QdrantConfig{
			Host:         cfg.Host,
			Port:         cfg.Port,
			APIKey:       cfg.APIKey,
			Collection:   cfg.Collection,
			VectorSize:   cfg.VectorSize,
			UseTLS:       cfg.UseTLS,
			RetryBackoff: cfg.RetryBackoff,
		}, embedder, logger)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
