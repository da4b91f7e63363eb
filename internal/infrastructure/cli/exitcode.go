package cli

import (
	"context"
	"errors"

	"github.com/doeshing/aiterm/internal/domain"
)

// ExitCode maps a command error to the process exit status. A failed
// segment's own exit status is passed through.
func ExitCode(err error) int {
	if err == nil {
		return domain.ExitOK
	}

	var exitErr *domain.ExitStatusError
	var malformed *domain.MalformedCommandError
	var unavailable *domain.GenerationUnavailableError
	switch {
	case errors.Is(err, context.Canceled):
		return domain.ExitInterrupted
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &malformed):
		return domain.ExitMalformed
	case errors.As(err, &unavailable):
		return domain.ExitGeneration
	default:
		return domain.ExitBlocked
	}
}
