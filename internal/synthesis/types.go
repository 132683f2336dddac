package synthesis

import (
	"fmt"

	"github.com/fyrsmithlabs/ragd/internal/retrieval"
)

// FallbackAnswer is returned when no relevant context is available.
const FallbackAnswer = "I don't have information about that in the documents."

// previewLength bounds the source content preview, in runes.
const previewLength = 150

// Source describes one chunk that contributed to an answer.
type Source struct {
	Filename  string  `json:"filename"`
	Preview   string  `json:"preview"`
	Score     float32 `json:"score"`
	Relevance string  `json:"relevance"`
}

// Result is a synthesized answer with its provenance.
type Result struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float32  `json:"confidence"`
	ModelUsed  string   `json:"model_used"`
	ChunksUsed int      `json:"chunks_used"`
}

// newSource builds a Source from a scored chunk, truncating the
// content preview and formatting the similarity as a percentage.
func newSource(chunk retrieval.ScoredChunk) Source {
	preview := chunk.Content
	if runes := []rune(preview); len(runes) > previewLength {
		preview = string(runes[:previewLength]) + "..."
	}
	return Source{
		Filename:  chunk.Filename(),
		Preview:   preview,
		Score:     chunk.Score,
		Relevance: fmt.Sprintf("%.1f%%", chunk.Score*100),
	}
}

// confidence is the mean score of the chunks used for the answer.
func confidence(chunks []retrieval.ScoredChunk) float32 {
	if len(chunks) == 0 {
		return 0
	}
	var sum float32
	for _, c := range chunks {
		sum += c.Score
	}
	return sum / float32(len(chunks))
}
