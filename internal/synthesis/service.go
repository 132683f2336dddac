package synthesis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/retrieval"
)

// Service synthesizes answers from retrieved chunks.
type Service struct {
	generator Generator
	logger    *zap.Logger
}

// NewService creates an answer synthesis service.
func NewService(generator Generator, logger *zap.Logger) (*Service, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: generator required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{generator: generator, logger: logger}, nil
}

// Synthesize answers the question from the given chunks. With no
// chunks it returns the fallback answer without calling the model.
func (s *Service) Synthesize(ctx context.Context, question string, chunks []retrieval.ScoredChunk) (*Result, error) {
	if len(chunks) == 0 {
		s.logger.Info("no relevant context, returning fallback answer",
			zap.String("question", question))
		return &Result{
			Answer:     FallbackAnswer,
			Sources:    []Source{},
			Confidence: 0,
			ModelUsed:  s.generator.Model(),
			ChunksUsed: 0,
		}, nil
	}

	raw, err := s.generator.Generate(ctx, systemPrompt, buildUserPrompt(question, chunks))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	answer := Clean(raw)
	if answer == "" {
		answer = FallbackAnswer
	}

	sources := make([]Source, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, newSource(chunk))
	}

	s.logger.Debug("synthesized answer",
		zap.Int("chunks_used", len(chunks)),
		zap.String("model", s.generator.Model()))

	return &Result{
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence(chunks),
		ModelUsed:  s.generator.Model(),
		ChunksUsed: len(chunks),
	}, nil
}
