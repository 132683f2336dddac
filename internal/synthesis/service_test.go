package synthesis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/retrieval"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (f *fakeGenerator) Generate(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) Model() string { return "test-model" }

func scoredChunk(filename, content string, score float32) retrieval.ScoredChunk {
	return retrieval.ScoredChunk{
		ID:      filename + "_0",
		Content: content,
		Score:   score,
		Metadata: map[string]interface{}{
			"filename": filename,
		},
	}
}

func TestSynthesize(t *testing.T) {
	t.Run("answers from chunks", func(t *testing.T) {
		gen := &fakeGenerator{response: "According to the document, Paris is the capital."}
		svc, err := NewService(gen, zap.NewNop())
		require.NoError(t, err)

		chunks := []retrieval.ScoredChunk{
			scoredChunk("geo.txt", "Paris is the capital of France.", 0.9),
			scoredChunk("history.txt", "France is in Europe.", 0.5),
		}

		result, err := svc.Synthesize(context.Background(), "What is the capital of France?", chunks)
		require.NoError(t, err)

		assert.Equal(t, "Paris is the capital.", result.Answer)
		assert.Equal(t, "test-model", result.ModelUsed)
		assert.Equal(t, 2, result.ChunksUsed)
		assert.InDelta(t, 0.7, result.Confidence, 0.001)
		require.Len(t, result.Sources, 2)
		assert.Equal(t, "geo.txt", result.Sources[0].Filename)
		assert.Equal(t, "90.0%", result.Sources[0].Relevance)
		assert.Equal(t, "50.0%", result.Sources[1].Relevance)
	})

	t.Run("no chunks short-circuits", func(t *testing.T) {
		gen := &fakeGenerator{response: "should not be called"}
		svc, err := NewService(gen, zap.NewNop())
		require.NoError(t, err)

		result, err := svc.Synthesize(context.Background(), "anything", nil)
		require.NoError(t, err)

		assert.Equal(t, FallbackAnswer, result.Answer)
		assert.Zero(t, result.Confidence)
		assert.Zero(t, result.ChunksUsed)
		assert.Empty(t, result.Sources)
		assert.Zero(t, gen.calls, "generator must not be called without context")
	})

	t.Run("prompt contains document blocks", func(t *testing.T) {
		gen := &fakeGenerator{response: "Paris."}
		svc, err := NewService(gen, zap.NewNop())
		require.NoError(t, err)

		chunks := []retrieval.ScoredChunk{
			scoredChunk("geo.txt", "Paris is the capital of France.", 0.9),
		}
		_, err = svc.Synthesize(context.Background(), "capital?", chunks)
		require.NoError(t, err)

		assert.Contains(t, gen.lastUser, "--- Document: geo.txt ---")
		assert.Contains(t, gen.lastUser, "Paris is the capital of France.")
		assert.Contains(t, gen.lastUser, "Question: capital?")
	})

	t.Run("generation error propagates", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("rate limited")}
		svc, err := NewService(gen, zap.NewNop())
		require.NoError(t, err)

		chunks := []retrieval.ScoredChunk{scoredChunk("a.txt", "content", 0.5)}
		_, err = svc.Synthesize(context.Background(), "q", chunks)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("empty completion falls back", func(t *testing.T) {
		gen := &fakeGenerator{response: "   "}
		svc, err := NewService(gen, zap.NewNop())
		require.NoError(t, err)

		chunks := []retrieval.ScoredChunk{scoredChunk("a.txt", "content", 0.5)}
		result, err := svc.Synthesize(context.Background(), "q", chunks)
		require.NoError(t, err)
		assert.Equal(t, FallbackAnswer, result.Answer)
	})

	t.Run("nil generator rejected", func(t *testing.T) {
		_, err := NewService(nil, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestNewSource(t *testing.T) {
	t.Run("truncates long content", func(t *testing.T) {
		long := make([]rune, 300)
		for i := range long {
			long[i] = 'a'
		}
		src := newSource(scoredChunk("big.txt", string(long), 0.42))
		assert.Len(t, []rune(src.Preview), 153)
		assert.True(t, len(src.Preview) > 3)
		assert.Equal(t, "...", src.Preview[len(src.Preview)-3:])
		assert.Equal(t, "42.0%", src.Relevance)
	})

	t.Run("short content kept whole", func(t *testing.T) {
		src := newSource(scoredChunk("small.txt", "short", 0.1))
		assert.Equal(t, "short", src.Preview)
	})

	t.Run("missing filename", func(t *testing.T) {
		chunk := retrieval.ScoredChunk{ID: "x_0", Content: "c", Score: 0.5}
		src := newSource(chunk)
		assert.Equal(t, "Unknown", src.Filename)
	})
}

func TestGeneratorConfig(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewOpenAIGenerator(GeneratorConfig{Model: "llama-3.3-70b-versatile"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("requires model", func(t *testing.T) {
		_, err := NewOpenAIGenerator(GeneratorConfig{APIKey: "k"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("defaults applied", func(t *testing.T) {
		cfg := GeneratorConfig{APIKey: "k", Model: "m"}
		cfg.ApplyDefaults()
		assert.Equal(t, float32(0.1), cfg.Temperature)
		assert.Equal(t, 1024, cfg.MaxTokens)
	})
}
