package ai

import (
	"context"
	"errors"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// FallbackGenerator asks the primary generator first and the offline one
// when the primary is unavailable. Cancellation is never retried.
type FallbackGenerator struct {
	primary   ports.Generator
	secondary ports.Generator
	logger    ports.Logger
}

var _ ports.Generator = (*FallbackGenerator)(nil)

func NewFallbackGenerator(primary, secondary ports.Generator, logger ports.Logger) *FallbackGenerator {
	return &FallbackGenerator{primary: primary, secondary: secondary, logger: logger}
}

func (g *FallbackGenerator) Name() string {
	return g.primary.Name()
}

func (g *FallbackGenerator) Generate(ctx context.Context, req ports.GenerationRequest) (domain.CandidateCommand, error) {
	candidate, err := g.primary.Generate(ctx, req)
	if err == nil {
		return candidate, nil
	}
	var unavailableErr *domain.GenerationUnavailableError
	if ctx.Err() != nil || !errors.As(err, &unavailableErr) {
		return domain.CandidateCommand{}, err
	}

	g.logger.Warn("provider unavailable, using offline patterns", map[string]interface{}{
		"provider": g.primary.Name(),
		"error":    err.Error(),
	})
	candidate, fallbackErr := g.secondary.Generate(ctx, req)
	if fallbackErr != nil {
		// the primary's failure says more than "no pattern matched"
		return domain.CandidateCommand{}, err
	}
	return candidate, nil
}
