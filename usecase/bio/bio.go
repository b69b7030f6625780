package bio

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Generator abstracts the text-generation API so the use case stays
// transport-agnostic.
type Generator interface {
	Generate(ctx context.Context, name, interests string) (string, error)
}

// Fallback sentences returned instead of surfacing generation failures.
const (
	FallbackUnavailable = "This user prefers to keep an air of mystery about them."
	FallbackEmpty       = "A passionate individual with a love for life and learning."
)

// UseCase produces short user biographies. It never returns an error: every
// failure mode of the underlying generator collapses into a fallback sentence.
type UseCase struct {
	generator Generator
	logger    *zap.Logger
}

func New(generator Generator, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		generator: generator,
		logger:    logger,
	}
}

// Generate returns a biography for the given name and interests. The result
// is always a non-empty string.
func (uc *UseCase) Generate(ctx context.Context, name, interests string) string {
	if uc.generator == nil {
		return FallbackUnavailable
	}

	text, err := uc.generator.Generate(ctx, name, interests)
	if err != nil {
		uc.logger.Warn("bio generation failed", zap.Error(err))
		return FallbackUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return FallbackEmpty
	}
	return text
}
