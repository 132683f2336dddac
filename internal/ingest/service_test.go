package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/chunker"
	"github.com/fyrsmithlabs/ragd/internal/documents"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

type fakeMetadataStore struct {
	mu        sync.Mutex
	docs      map[string]*documents.Document
	processed map[string]int
	pages     map[string]int
	failed    map[string]string
}

func newFakeMetadataStore() *fakeMetadataStore {
	return &fakeMetadataStore{
		docs:      make(map[string]*documents.Document),
		processed: make(map[string]int),
		pages:     make(map[string]int),
		failed:    make(map[string]string),
	}
}

func (f *fakeMetadataStore) Get(_ context.Context, id string) (*documents.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeMetadataStore) MarkProcessed(_ context.Context, id string, pageCount, chunkCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed[id] = chunkCount
	f.pages[id] = pageCount
	return nil
}

func (f *fakeMetadataStore) MarkFailed(_ context.Context, id string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = reason
	return nil
}

type fakeBlobStore struct {
	files map[string][]byte
}

func (f *fakeBlobStore) Read(path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("file missing")
	}
	return data, nil
}

type fakeVectorStore struct {
	mu      sync.Mutex
	chunks  map[string][]vectorstore.Chunk
	addErr  error
	deleted []string
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{chunks: make(map[string][]vectorstore.Chunk)}
}

func (f *fakeVectorStore) AddChunks(_ context.Context, chunks []vectorstore.Chunk) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		f.chunks[c.DocumentID] = append(f.chunks[c.DocumentID], c)
		ids = append(ids, c.ExternalID())
	}
	return ids, nil
}

func (f *fakeVectorStore) Search(context.Context, string, int, []string) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (f *fakeVectorStore) DeleteByDocument(_ context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, documentID)
	delete(f.chunks, documentID)
	return nil
}

func (f *fakeVectorStore) Stats(context.Context) (*vectorstore.Stats, error) {
	return &vectorstore.Stats{}, nil
}

func (f *fakeVectorStore) Close() error { return nil }

var _ vectorstore.Store = (*fakeVectorStore)(nil)

func newTestService(t *testing.T, docs *fakeMetadataStore, files *fakeBlobStore, vectors *fakeVectorStore) *Service {
	t.Helper()
	svc, err := NewService(Config{QueueSize: 4, Workers: 1},
		docs, files, chunker.New(100, 20), vectors, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestProcess(t *testing.T) {
	t.Run("success marks processed", func(t *testing.T) {
		docs := newFakeMetadataStore()
		docs.docs["doc1"] = &documents.Document{
			ID: "doc1", Filename: "notes.txt", StoragePath: "p1",
		}
		files := &fakeBlobStore{files: map[string][]byte{"p1": []byte("some document text worth indexing")}}
		vectors := newFakeVectorStore()

		svc := newTestService(t, docs, files, vectors)
		count, err := svc.Process(context.Background(), "doc1")
		require.NoError(t, err)
		assert.Greater(t, count, 0)
		assert.Equal(t, count, docs.processed["doc1"])
		assert.Zero(t, docs.pages["doc1"], "text files record no page count")
		assert.Len(t, vectors.chunks["doc1"], count)
		assert.Equal(t, []string{"doc1"}, vectors.deleted, "old chunks cleared before indexing")
	})

	t.Run("extraction failure marks failed", func(t *testing.T) {
		docs := newFakeMetadataStore()
		docs.docs["doc1"] = &documents.Document{
			ID: "doc1", Filename: "image.png", StoragePath: "p1",
		}
		files := &fakeBlobStore{files: map[string][]byte{"p1": []byte("data")}}
		vectors := newFakeVectorStore()

		svc := newTestService(t, docs, files, vectors)
		_, err := svc.Process(context.Background(), "doc1")
		require.Error(t, err)
		assert.Contains(t, docs.failed["doc1"], "unsupported")
		assert.Empty(t, docs.processed)
	})

	t.Run("missing file marks failed", func(t *testing.T) {
		docs := newFakeMetadataStore()
		docs.docs["doc1"] = &documents.Document{
			ID: "doc1", Filename: "notes.txt", StoragePath: "gone",
		}
		vectors := newFakeVectorStore()

		svc := newTestService(t, docs, &fakeBlobStore{files: map[string][]byte{}}, vectors)
		_, err := svc.Process(context.Background(), "doc1")
		require.Error(t, err)
		assert.NotEmpty(t, docs.failed["doc1"])
	})

	t.Run("index failure marks failed", func(t *testing.T) {
		docs := newFakeMetadataStore()
		docs.docs["doc1"] = &documents.Document{
			ID: "doc1", Filename: "notes.txt", StoragePath: "p1",
		}
		files := &fakeBlobStore{files: map[string][]byte{"p1": []byte("text")}}
		vectors := newFakeVectorStore()
		vectors.addErr = errors.New("store down")

		svc := newTestService(t, docs, files, vectors)
		_, err := svc.Process(context.Background(), "doc1")
		require.Error(t, err)
		assert.Contains(t, docs.failed["doc1"], "store down")
	})

	t.Run("unknown document", func(t *testing.T) {
		svc := newTestService(t, newFakeMetadataStore(), &fakeBlobStore{}, newFakeVectorStore())
		_, err := svc.Process(context.Background(), "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, documents.ErrNotFound)
	})
}

func TestEnqueue(t *testing.T) {
	t.Run("queue full", func(t *testing.T) {
		docs := newFakeMetadataStore()
		svc, err := NewService(Config{QueueSize: 1, Workers: 1},
			docs, &fakeBlobStore{}, chunker.New(100, 20), newFakeVectorStore(), zap.NewNop())
		require.NoError(t, err)

		// Workers not started, so the first job fills the queue.
		require.NoError(t, svc.Enqueue("a"))
		err = svc.Enqueue("b")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Equal(t, 1, svc.QueueDepth())
	})

	t.Run("worker drains queue", func(t *testing.T) {
		docs := newFakeMetadataStore()
		docs.docs["doc1"] = &documents.Document{
			ID: "doc1", Filename: "notes.txt", StoragePath: "p1",
		}
		files := &fakeBlobStore{files: map[string][]byte{"p1": []byte("hello world")}}

		svc := newTestService(t, docs, files, newFakeVectorStore())
		svc.Start(context.Background())

		require.NoError(t, svc.Enqueue("doc1"))

		assert.Eventually(t, func() bool {
			docs.mu.Lock()
			defer docs.mu.Unlock()
			_, ok := docs.processed["doc1"]
			return ok
		}, 2*time.Second, 10*time.Millisecond)

		svc.Stop()
	})

	t.Run("enqueue after stop", func(t *testing.T) {
		svc := newTestService(t, newFakeMetadataStore(), &fakeBlobStore{}, newFakeVectorStore())
		svc.Start(context.Background())
		svc.Stop()

		err := svc.Enqueue("doc1")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStopped)
	})
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, 64, cfg.QueueSize)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 5*time.Minute, cfg.JobTimeout)
}
