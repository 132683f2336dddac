package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestQdrantConfigValidate(t *testing.T) {
	cfg := QdrantConfig{}
	cfg.ApplyDefaults()
	cfg.VectorSize = 384
	assert.NoError(t, cfg.Validate())

	bad := QdrantConfig{Host: "localhost", Port: 6334}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = QdrantConfig{Host: "localhost", Port: -1, VectorSize: 384}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestQdrantConfigDefaults(t *testing.T) {
	cfg := QdrantConfig{}
	cfg.ApplyDefaults()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6334, cfg.Port)
	assert.Equal(t, "document_chunks", cfg.Collection)
	assert.Equal(t, 3, cfg.MaxRetries)

	// Defaults never clobber credentials.
	authed := QdrantConfig{APIKey: "qd-cloud-key"}
	authed.ApplyDefaults()
	assert.Equal(t, "qd-cloud-key", authed.APIKey)
}

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", status.Error(codes.Unavailable, "down"), true},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), true},
		{"aborted", status.Error(codes.Aborted, "conflict"), true},
		{"exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
		{"invalid argument", status.Error(codes.InvalidArgument, "bad"), false},
		{"not found", status.Error(codes.NotFound, "missing"), false},
		{"plain error", assert.AnError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransientError(tt.err))
		})
	}
}

func TestPointIDDeterministic(t *testing.T) {
	a := pointID("doc1_0")
	b := pointID("doc1_0")
	c := pointID("doc1_1")

	assert.Equal(t, a.GetUuid(), b.GetUuid())
	assert.NotEqual(t, a.GetUuid(), c.GetUuid())
}

func TestChunkExternalID(t *testing.T) {
	c := Chunk{DocumentID: "abc", Index: 7}
	assert.Equal(t, "abc_7", c.ExternalID())
}
