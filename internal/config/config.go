// Package config provides configuration loading for ragd.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Storage     StorageConfig     `koanf:"storage"`
	Chunking    ChunkingConfig    `koanf:"chunking"`
	Retrieval   RetrievalConfig   `koanf:"retrieval"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	LLM         LLMConfig         `koanf:"llm"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Ingest      IngestConfig      `koanf:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	MaxUploadBytes  int64    `koanf:"max_upload_bytes"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// StorageConfig holds metadata and file storage settings.
type StorageConfig struct {
	DatabaseDSN Secret `koanf:"database_dsn"`
	FilesDir    string `koanf:"files_dir"`
}

// ChunkingConfig holds text splitter settings.
type ChunkingConfig struct {
	ChunkSize    int `koanf:"chunk_size"`
	ChunkOverlap int `koanf:"chunk_overlap"`
}

// RetrievalConfig holds search and relevance filter settings.
type RetrievalConfig struct {
	TopK          int     `koanf:"top_k"`
	MinScore      float32 `koanf:"min_score"`
	FallbackCount int     `koanf:"fallback_count"`
	FallbackFloor float32 `koanf:"fallback_floor"`
}

// EmbeddingsConfig holds the embedding server settings.
type EmbeddingsConfig struct {
	BaseURL string   `koanf:"base_url"`
	Model   string   `koanf:"model"`
	APIKey  Secret   `koanf:"api_key"`
	Timeout Duration `koanf:"timeout"`
}

// LLMConfig holds the chat completion settings.
type LLMConfig struct {
	BaseURL     string  `koanf:"base_url"`
	APIKey      Secret  `koanf:"api_key"`
	Model       string  `koanf:"model"`
	Temperature float32 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
}

// VectorStoreConfig holds vector index settings.
type VectorStoreConfig struct {
	Provider string        `koanf:"provider"`
	Chromem  ChromemConfig `koanf:"chromem"`
	Qdrant   QdrantConfig  `koanf:"qdrant"`
}

// ChromemConfig holds embedded chromem-go settings.
type ChromemConfig struct {
	Path       string `koanf:"path"`
	Collection string `koanf:"collection"`
	Compress   bool   `koanf:"compress"`
}

// QdrantConfig holds Qdrant gRPC settings.
type QdrantConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	APIKey     Secret `koanf:"api_key"`
	UseTLS     bool   `koanf:"use_tls"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
}

// IngestConfig holds background pipeline settings.
type IngestConfig struct {
	QueueSize  int      `koanf:"queue_size"`
	Workers    int      `koanf:"workers"`
	JobTimeout Duration `koanf:"job_timeout"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 100 * 1024 * 1024
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Storage.FilesDir == "" {
		cfg.Storage.FilesDir = "./data/uploads"
	}

	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 1000
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 200
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MinScore == 0 {
		cfg.Retrieval.MinScore = 0.1
	}
	if cfg.Retrieval.FallbackCount == 0 {
		cfg.Retrieval.FallbackCount = 3
	}
	if cfg.Retrieval.FallbackFloor == 0 {
		cfg.Retrieval.FallbackFloor = 0.3
	}

	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = "http://localhost:8080"
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "BAAI/bge-small-en-v1.5"
	}
	if cfg.Embeddings.Timeout == 0 {
		cfg.Embeddings.Timeout = Duration(30 * time.Second)
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.3-70b-versatile"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}

	if cfg.VectorStore.Provider == "" {
		cfg.VectorStore.Provider = "chromem"
	}
	if cfg.VectorStore.Chromem.Path == "" {
		cfg.VectorStore.Chromem.Path = "./data/vectorstore"
	}
	if cfg.VectorStore.Chromem.Collection == "" {
		cfg.VectorStore.Chromem.Collection = "document_chunks"
	}
	if cfg.VectorStore.Qdrant.Host == "" {
		cfg.VectorStore.Qdrant.Host = "localhost"
	}
	if cfg.VectorStore.Qdrant.Port == 0 {
		cfg.VectorStore.Qdrant.Port = 6334
	}
	if cfg.VectorStore.Qdrant.Collection == "" {
		cfg.VectorStore.Qdrant.Collection = "document_chunks"
	}
	if cfg.VectorStore.Qdrant.VectorSize == 0 {
		cfg.VectorStore.Qdrant.VectorSize = 384
	}

	if cfg.Ingest.QueueSize == 0 {
		cfg.Ingest.QueueSize = 64
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 2
	}
	if cfg.Ingest.JobTimeout == 0 {
		cfg.Ingest.JobTimeout = Duration(5 * time.Minute)
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Chunking.ChunkSize < 1 {
		return fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 {
		return fmt.Errorf("chunking.chunk_overlap cannot be negative, got %d", c.Chunking.ChunkOverlap)
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MinScore < 0 || c.Retrieval.MinScore > 1 {
		return fmt.Errorf("retrieval.min_score must be in [0,1], got %f", c.Retrieval.MinScore)
	}
	if !c.Storage.DatabaseDSN.IsSet() {
		return fmt.Errorf("storage.database_dsn is required")
	}
	switch c.VectorStore.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("vectorstore.provider must be chromem or qdrant, got %q", c.VectorStore.Provider)
	}
	return nil
}
