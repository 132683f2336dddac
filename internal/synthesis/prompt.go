package synthesis

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/ragd/internal/retrieval"
)

const systemPrompt = `You are a helpful assistant that answers questions using only the provided document excerpts. Answer naturally and directly. Do not mention that you are reading from documents, context, or excerpts. If the excerpts do not contain the answer, say so plainly.`

// buildContext renders the retrieved chunks as labeled document blocks.
func buildContext(chunks []retrieval.ScoredChunk) string {
	blocks := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, fmt.Sprintf("--- Document: %s ---\n%s", chunk.Filename(), chunk.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// buildUserPrompt combines the context blocks and the question into the
// user message sent to the model.
func buildUserPrompt(question string, chunks []retrieval.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("Document excerpts:\n\n")
	b.WriteString(buildContext(chunks))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
