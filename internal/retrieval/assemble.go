package retrieval

import "github.com/fyrsmithlabs/ragd/internal/vectorstore"

const (
	// DefaultMinScore is the strict lower bound a chunk must exceed to
	// be used as context.
	DefaultMinScore = 0.1

	// DefaultFallbackCount is how many top-ranked chunks are used when
	// nothing clears the threshold.
	DefaultFallbackCount = 3

	// DefaultFallbackFloor is the minimum recorded score for fallback
	// chunks.
	DefaultFallbackFloor = 0.3
)

// ScoredChunk is a retrieved chunk plus its (possibly floor-adjusted)
// relevance score in [0,1]. Transient; produced per query.
type ScoredChunk struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]interface{}
}

// Filename returns the source filename recorded in the chunk metadata,
// or "Unknown" when absent.
func (c ScoredChunk) Filename() string {
	if name, ok := c.Metadata["filename"].(string); ok && name != "" {
		return name
	}
	return "Unknown"
}

// Thresholds configures the relevance filter.
type Thresholds struct {
	// MinScore: chunks with score strictly greater survive the filter.
	MinScore float32

	// FallbackCount: number of leading input chunks used when the
	// filter keeps nothing.
	FallbackCount int

	// FallbackFloor: fallback chunk scores are raised to at least this.
	FallbackFloor float32
}

// DefaultThresholds returns the standard filter configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinScore:      DefaultMinScore,
		FallbackCount: DefaultFallbackCount,
		FallbackFloor: DefaultFallbackFloor,
	}
}

// Assemble selects the context chunks for answer generation from
// results ordered by descending relevance.
//
// Negative scores from a misbehaving backend are clamped to zero before
// the threshold comparison and are never propagated. Chunks scoring
// strictly above MinScore are kept in rank order. If none qualify, the
// first FallbackCount results are used instead, with each score below
// FallbackFloor raised to the floor; rank order is preserved either
// way. Empty input returns an empty slice — the synthesizer treats that
// as "no relevant information" and skips generation.
func Assemble(results []vectorstore.SearchResult, t Thresholds) []ScoredChunk {
	if len(results) == 0 {
		return nil
	}

	kept := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		score := r.Score
		if score < 0 {
			score = 0
		}
		if score > t.MinScore {
			kept = append(kept, ScoredChunk{
				ID:       r.ID,
				Content:  r.Content,
				Score:    score,
				Metadata: r.Metadata,
			})
		}
	}
	if len(kept) > 0 {
		return kept
	}

	// Fallback: best available evidence regardless of score.
	n := t.FallbackCount
	if n > len(results) {
		n = len(results)
	}
	kept = make([]ScoredChunk, 0, n)
	for _, r := range results[:n] {
		score := r.Score
		if score < t.FallbackFloor {
			score = t.FallbackFloor
		}
		kept = append(kept, ScoredChunk{
			ID:       r.ID,
			Content:  r.Content,
			Score:    score,
			Metadata: r.Metadata,
		})
	}
	return kept
}
