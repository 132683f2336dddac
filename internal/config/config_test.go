package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RAGD_STORAGE_DATABASE_DSN", "postgres://localhost/ragd?sslmode=disable")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, int64(100*1024*1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 200, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, float32(0.1), cfg.Retrieval.MinScore)
	assert.Equal(t, 3, cfg.Retrieval.FallbackCount)
	assert.Equal(t, float32(0.3), cfg.Retrieval.FallbackFloor)
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("RAGD_STORAGE_DATABASE_DSN", "postgres://localhost/ragd")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9001
chunking:
  chunk_size: 500
  chunk_overlap: 50
vectorstore:
  provider: qdrant
  qdrant:
    host: qdrant.internal
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Chunking.ChunkSize)
	assert.Equal(t, 50, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
	assert.Equal(t, "qdrant.internal", cfg.VectorStore.Qdrant.Host)
	// Untouched sections keep defaults.
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("RAGD_STORAGE_DATABASE_DSN", "postgres://localhost/ragd")
	t.Setenv("RAGD_SERVER_PORT", "9002")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9002, cfg.Server.Port)
}

func TestEnvReachesNestedSections(t *testing.T) {
	t.Setenv("RAGD_STORAGE_DATABASE_DSN", "postgres://localhost/ragd")
	t.Setenv("RAGD_VECTORSTORE_PROVIDER", "qdrant")
	t.Setenv("RAGD_VECTORSTORE_QDRANT_HOST", "qdrant.cloud.example")
	t.Setenv("RAGD_VECTORSTORE_QDRANT_PORT", "7443")
	t.Setenv("RAGD_VECTORSTORE_QDRANT_API_KEY", "qd-key")
	t.Setenv("RAGD_VECTORSTORE_CHROMEM_PATH", "/var/lib/ragd/vectors")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
	assert.Equal(t, "qdrant.cloud.example", cfg.VectorStore.Qdrant.Host)
	assert.Equal(t, 7443, cfg.VectorStore.Qdrant.Port)
	assert.Equal(t, "qd-key", cfg.VectorStore.Qdrant.APIKey.Value())
	assert.Equal(t, "/var/lib/ragd/vectors", cfg.VectorStore.Chromem.Path)
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"RAGD_SERVER_PORT", "server.port"},
		{"RAGD_LLM_API_KEY", "llm.api_key"},
		{"RAGD_STORAGE_FILES_DIR", "storage.files_dir"},
		{"RAGD_VECTORSTORE_PROVIDER", "vectorstore.provider"},
		{"RAGD_VECTORSTORE_QDRANT_HOST", "vectorstore.qdrant.host"},
		{"RAGD_VECTORSTORE_QDRANT_API_KEY", "vectorstore.qdrant.api_key"},
		{"RAGD_VECTORSTORE_CHROMEM_PATH", "vectorstore.chromem.path"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.env))
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("RAGD_STORAGE_DATABASE_DSN", "postgres://localhost/ragd")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Storage.DatabaseDSN = "postgres://localhost/ragd"
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing DSN", func(t *testing.T) {
		cfg := base()
		cfg.Storage.DatabaseDSN = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("overlap not below size", func(t *testing.T) {
		cfg := base()
		cfg.Chunking.ChunkSize = 100
		cfg.Chunking.ChunkOverlap = 100
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad provider", func(t *testing.T) {
		cfg := base()
		cfg.VectorStore.Provider = "pinecone"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("min score out of range", func(t *testing.T) {
		cfg := base()
		cfg.Retrieval.MinScore = 1.5
		assert.Error(t, cfg.Validate())
	})
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("super-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "super-secret", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"[REDACTED]"`, string(data))

	assert.Equal(t, "", Secret("").String())
	assert.False(t, Secret("").IsSet())
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("not a duration")))
}
