package ai

import (
	"context"
	"errors"
	"os"

	"github.com/doeshing/aiterm/internal/domain"
)

var errEmptyResponse = errors.New("provider returned no command")

func resolveAuth(primary string, fallback string) string {
	if primary != "" {
		if value := os.Getenv(primary); value != "" {
			return value
		}
	}
	if fallback == "" {
		return ""
	}
	return os.Getenv(fallback)
}

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

func valueOrDefaultInt(value int, def int) int {
	if value == 0 {
		return def
	}
	return value
}

// unavailable wraps a provider failure. Cancellation is passed through
// untouched so callers can tell an interrupt from an outage.
func unavailable(ctx context.Context, provider string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &domain.GenerationUnavailableError{Provider: provider, Err: err}
}
