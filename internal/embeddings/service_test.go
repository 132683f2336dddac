package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewService(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		svc, err := NewService(Config{BaseURL: "http://localhost:8080", Model: "bge-small"})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("missing base URL", func(t *testing.T) {
		_, err := NewService(Config{Model: "bge-small"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestEmbedDocuments(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/embed", r.URL.Path)

			var req teiRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			inputs, ok := req.Inputs.([]interface{})
			require.True(t, ok)

			vectors := make([][]float32, len(inputs))
			for i := range vectors {
				vectors[i] = []float32{float32(i), 0.5}
			}
			require.NoError(t, json.NewEncoder(w).Encode(vectors))
		})

		svc, err := NewService(Config{BaseURL: srv.URL, Model: "bge-small"})
		require.NoError(t, err)

		vectors, err := svc.EmbedDocuments(context.Background(), []string{"hello", "world"})
		require.NoError(t, err)
		require.Len(t, vectors, 2)
		assert.Equal(t, []float32{0, 0.5}, vectors[0])
		assert.Equal(t, []float32{1, 0.5}, vectors[1])
	})

	t.Run("empty input", func(t *testing.T) {
		svc, err := NewService(Config{BaseURL: "http://localhost:8080"})
		require.NoError(t, err)

		_, err = svc.EmbedDocuments(context.Background(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("count mismatch", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode([][]float32{{0.1}}))
		})

		svc, err := NewService(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = svc.EmbedDocuments(context.Background(), []string{"a", "b"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmbeddingFailed)
	})

	t.Run("server error", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model overloaded", http.StatusServiceUnavailable)
		})

		svc, err := NewService(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = svc.EmbedDocuments(context.Background(), []string{"a"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmbeddingFailed)
		assert.Contains(t, err.Error(), "503")
	})
}

func TestEmbedQuery(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			var req teiRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			input, ok := req.Inputs.(string)
			require.True(t, ok)
			assert.Equal(t, "what is the capital", input)

			require.NoError(t, json.NewEncoder(w).Encode([][]float32{{0.1, 0.2, 0.3}}))
		})

		svc, err := NewService(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		vector, err := svc.EmbedQuery(context.Background(), "what is the capital")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	})

	t.Run("empty text", func(t *testing.T) {
		svc, err := NewService(Config{BaseURL: "http://localhost:8080"})
		require.NoError(t, err)

		_, err = svc.EmbedQuery(context.Background(), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("sends bearer token", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewEncoder(w).Encode([][]float32{{0.1}}))
		})

		svc, err := NewService(Config{BaseURL: srv.URL, APIKey: "secret-key"})
		require.NoError(t, err)

		_, err = svc.EmbedQuery(context.Background(), "hello")
		require.NoError(t, err)
	})
}
