package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, domain.ExitOK},
		{"blocked", domain.ErrCommandBlocked, domain.ExitBlocked},
		{"declined", fmt.Errorf("run: %w", domain.ErrConfirmationDeclined), domain.ExitBlocked},
		{"malformed", fmt.Errorf("evaluate command: %w", &domain.MalformedCommandError{Reason: "unterminated quote"}), domain.ExitMalformed},
		{"unavailable", fmt.Errorf("generate command: %w", &domain.GenerationUnavailableError{Provider: "openai"}), domain.ExitGeneration},
		{"interrupted", context.Canceled, domain.ExitInterrupted},
		{"declined while interrupted", fmt.Errorf("%w: %w", domain.ErrConfirmationDeclined, context.Canceled), domain.ExitInterrupted},
		{"segment exit", &domain.ExitStatusError{Code: 124}, 124},
		{"other", errors.New("config broken"), domain.ExitBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
