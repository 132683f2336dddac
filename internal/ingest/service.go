package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/chunker"
	"github.com/fyrsmithlabs/ragd/internal/documents"
	"github.com/fyrsmithlabs/ragd/internal/extract"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

var (
	// ErrQueueFull indicates the job queue is at capacity.
	ErrQueueFull = errors.New("ingest queue full")

	// ErrStopped indicates the service is shutting down.
	ErrStopped = errors.New("ingest service stopped")

	// ErrInvalidConfig indicates invalid service configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MetadataStore is the document record surface the pipeline needs.
type MetadataStore interface {
	Get(ctx context.Context, id string) (*documents.Document, error)
	MarkProcessed(ctx context.Context, id string, pageCount, chunkCount int) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// BlobStore reads stored file contents.
type BlobStore interface {
	Read(path string) ([]byte, error)
}

// Config holds ingest pipeline settings.
type Config struct {
	// QueueSize bounds the number of pending jobs. Default: 64.
	QueueSize int

	// Workers is the number of concurrent pipeline workers.
	// Default: 2.
	Workers int

	// JobTimeout bounds one document's pipeline run. Default: 5m.
	JobTimeout time.Duration
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 5 * time.Minute
	}
}

// Service runs the ingestion workers.
type Service struct {
	config   Config
	docs     MetadataStore
	files    BlobStore
	splitter *chunker.Splitter
	vectors  vectorstore.Store
	logger   *zap.Logger
	metrics  *Metrics

	jobs    chan string
	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

// NewService creates the ingest service. Call Start to launch the
// workers.
func NewService(config Config, docs MetadataStore, files BlobStore, splitter *chunker.Splitter, vectors vectorstore.Store, logger *zap.Logger) (*Service, error) {
	if docs == nil || files == nil || splitter == nil || vectors == nil {
		return nil, fmt.Errorf("%w: all dependencies required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	return &Service{
		config:   config,
		docs:     docs,
		files:    files,
		splitter: splitter,
		vectors:  vectors,
		logger:   logger,
		metrics:  newMetrics(),
		jobs:     make(chan string, config.QueueSize),
		stop:     make(chan struct{}),
	}, nil
}

// Start launches the worker pool. Workers exit when ctx is canceled or
// Stop is called.
func (s *Service) Start(ctx context.Context) {
	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
	s.logger.Info("ingest workers started",
		zap.Int("workers", s.config.Workers),
		zap.Int("queue_size", s.config.QueueSize))
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (s *Service) Stop() {
	s.stopped.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// Enqueue submits a document for indexing. Returns ErrQueueFull when
// the queue is at capacity rather than blocking the caller.
func (s *Service) Enqueue(documentID string) error {
	select {
	case <-s.stop:
		return ErrStopped
	default:
	}
	select {
	case s.jobs <- documentID:
		s.metrics.queued.Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueDepth reports the number of pending jobs.
func (s *Service) QueueDepth() int {
	return len(s.jobs)
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			// Drain remaining jobs before exiting.
			select {
			case id := <-s.jobs:
				s.runJob(ctx, id)
			default:
				return
			}
		case id := <-s.jobs:
			s.runJob(ctx, id)
		}
	}
}

func (s *Service) runJob(ctx context.Context, documentID string) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	chunkCount, err := s.Process(jobCtx, documentID)
	s.metrics.recordJob(time.Since(start), chunkCount, err)

	if err != nil {
		s.logger.Error("document ingestion failed",
			zap.String("document_id", documentID),
			zap.Error(err))
		return
	}
	s.logger.Info("document ingested",
		zap.String("document_id", documentID),
		zap.Int("chunks", chunkCount),
		zap.Duration("elapsed", time.Since(start)))
}

// Process runs the full pipeline for one document synchronously and
// records the terminal status on the metadata store. It returns the
// indexed chunk count.
func (s *Service) Process(ctx context.Context, documentID string) (int, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("loading document: %w", err)
	}

	pageCount, chunkCount, err := s.index(ctx, doc)
	if err != nil {
		if markErr := s.docs.MarkFailed(ctx, documentID, err.Error()); markErr != nil {
			s.logger.Error("marking document failed",
				zap.String("document_id", documentID),
				zap.Error(markErr))
		}
		return 0, err
	}

	if err := s.docs.MarkProcessed(ctx, documentID, pageCount, chunkCount); err != nil {
		return chunkCount, fmt.Errorf("marking processed: %w", err)
	}
	return chunkCount, nil
}

func (s *Service) index(ctx context.Context, doc *documents.Document) (int, int, error) {
	data, err := s.files.Read(doc.StoragePath)
	if err != nil {
		return 0, 0, fmt.Errorf("reading file: %w", err)
	}

	text, pageCount, err := extract.Text(doc.Filename, data)
	if err != nil {
		return 0, 0, fmt.Errorf("extracting text: %w", err)
	}

	pieces := s.splitter.Split(text)
	if len(pieces) == 0 {
		return 0, 0, fmt.Errorf("%w: document produced no chunks", extract.ErrEmptyDocument)
	}

	chunks := make([]vectorstore.Chunk, 0, len(pieces))
	for i, content := range pieces {
		chunks = append(chunks, vectorstore.Chunk{
			DocumentID: doc.ID,
			Index:      i,
			Content:    content,
			Filename:   doc.Filename,
		})
	}

	if err := s.vectors.DeleteByDocument(ctx, doc.ID); err != nil {
		return 0, 0, fmt.Errorf("clearing old chunks: %w", err)
	}
	if _, err := s.vectors.AddChunks(ctx, chunks); err != nil {
		return 0, 0, fmt.Errorf("indexing chunks: %w", err)
	}
	return pageCount, len(chunks), nil
}
