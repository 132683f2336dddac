// Ragd is a document question-answering service.
//
// It accepts document uploads (PDF, DOCX, TXT, MD), indexes them into
// a vector store in the background, and answers natural-language
// questions over the corpus with source attributions.
//
// Configuration comes from an optional YAML file plus RAGD_* environment
// variables. See internal/config for the full key list.
//
// Usage:
//
//	# Start with defaults
//	RAGD_STORAGE_DATABASE_DSN=postgres://... ragd
//
//	# With a config file
//	ragd -config /etc/ragd/config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/chunker"
	"github.com/fyrsmithlabs/ragd/internal/config"
	"github.com/fyrsmithlabs/ragd/internal/documents"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/ingest"
	"github.com/fyrsmithlabs/ragd/internal/logging"
	"github.com/fyrsmithlabs/ragd/internal/retrieval"
	"github.com/fyrsmithlabs/ragd/internal/server"
	"github.com/fyrsmithlabs/ragd/internal/synthesis"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ragd\nVersion:    %s\nCommit:     %s\nBuild Date: %s\n", version, gitCommit, buildDate)
		os.Exit(0)
	}

	// Optional .env for local development.
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// run starts the service and blocks until the context is canceled.
//
// Initialization order:
//  1. Load and validate configuration
//  2. Build the logger
//  3. Connect infrastructure (PostgreSQL, vector store, embeddings)
//  4. Start the ingest workers
//  5. Start the HTTP server
//  6. Graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting ragd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("vectorstore", cfg.VectorStore.Provider))

	deps, err := initDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}
	defer deps.Close()

	ingestSvc, err := ingest.NewService(ingest.Config{
		QueueSize:  cfg.Ingest.QueueSize,
		Workers:    cfg.Ingest.Workers,
		JobTimeout: cfg.Ingest.JobTimeout.Duration(),
	}, deps.docStore, deps.fileStore, deps.splitter, deps.vectorStore, logger)
	if err != nil {
		return fmt.Errorf("creating ingest service: %w", err)
	}
	ingestSvc.Start(ctx)
	defer ingestSvc.Stop()

	srv, err := server.NewServer(deps.docStore, deps.fileStore, ingestSvc, deps.vectorStore, deps.synthesizer, logger, &server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		TopK:           cfg.Retrieval.TopK,
		Thresholds: retrieval.Thresholds{
			MinScore:      cfg.Retrieval.MinScore,
			FallbackCount: cfg.Retrieval.FallbackCount,
			FallbackFloor: cfg.Retrieval.FallbackFloor,
		},
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// dependencies holds all infrastructure dependencies.
type dependencies struct {
	docStore    *documents.Store
	fileStore   *documents.FileStore
	splitter    *chunker.Splitter
	vectorStore vectorstore.Store
	synthesizer *synthesis.Service
}

// Close releases all infrastructure resources.
func (d *dependencies) Close() {
	if d.vectorStore != nil {
		_ = d.vectorStore.Close()
	}
	if d.docStore != nil {
		_ = d.docStore.Close()
	}
}

// initDependencies connects PostgreSQL, file storage, the embedding
// service, the vector store, and the answer generator.
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dependencies, error) {
	docStore, err := documents.NewStore(ctx, documents.StoreConfig{
		DSN: cfg.Storage.DatabaseDSN.Value(),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	fileStore, err := documents.NewFileStore(cfg.Storage.FilesDir)
	if err != nil {
		docStore.Close()
		return nil, fmt.Errorf("creating file store: %w", err)
	}

	embeddingSvc, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.Embeddings.APIKey.Value(),
		Timeout: cfg.Embeddings.Timeout.Duration(),
	})
	if err != nil {
		docStore.Close()
		return nil, fmt.Errorf("creating embedding service: %w", err)
	}

	logger.Info("embedding service initialized",
		zap.String("base_url", cfg.Embeddings.BaseURL),
		zap.String("model", cfg.Embeddings.Model))

	store, err := vectorstore.NewStore(vectorstore.FactoryConfig{
		Provider:   vectorstore.Provider(cfg.VectorStore.Provider),
		Path:       cfg.VectorStore.Chromem.Path,
		Collection: chromemOrQdrantCollection(cfg),
		Host:       cfg.VectorStore.Qdrant.Host,
		Port:       cfg.VectorStore.Qdrant.Port,
		APIKey:     cfg.VectorStore.Qdrant.APIKey.Value(),
		VectorSize: uint64(cfg.VectorStore.Qdrant.VectorSize),
		UseTLS:     cfg.VectorStore.Qdrant.UseTLS,
	}, embeddingSvc.Embedder(), logger)
	if err != nil {
		docStore.Close()
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	generator, err := synthesis.NewOpenAIGenerator(synthesis.GeneratorConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey.Value(),
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		store.Close()
		docStore.Close()
		return nil, fmt.Errorf("creating answer generator: %w", err)
	}

	synthesizer, err := synthesis.NewService(generator, logger)
	if err != nil {
		store.Close()
		docStore.Close()
		return nil, fmt.Errorf("creating synthesis service: %w", err)
	}

	return &dependencies{
		docStore:    docStore,
		fileStore:   fileStore,
		splitter:    chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap),
		vectorStore: store,
		synthesizer: synthesizer,
	}, nil
}

func chromemOrQdrantCollection(cfg *config.Config) string {
	if cfg.VectorStore.Provider == "qdrant" {
		return cfg.VectorStore.Qdrant.Collection
	}
	return cfg.VectorStore.Chromem.Collection
}
