package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/pkg/logger"
	"github.com/doeshing/aiterm/internal/ports"
)

type stubGenerator struct {
	name      string
	candidate domain.CandidateCommand
	err       error
	calls     int
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(context.Context, ports.GenerationRequest) (domain.CandidateCommand, error) {
	s.calls++
	return s.candidate, s.err
}

func TestFallbackUsesSecondaryWhenPrimaryUnavailable(t *testing.T) {
	primary := &stubGenerator{name: "remote", err: &domain.GenerationUnavailableError{Provider: "remote", Err: errors.New("dial tcp: refused")}}
	secondary := &stubGenerator{name: "offline", candidate: domain.CandidateCommand{Text: "ls -la"}}

	gen := NewFallbackGenerator(primary, secondary, logger.Nop())
	candidate, err := gen.Generate(context.Background(), ports.GenerationRequest{Prompt: "list files"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if candidate.Text != "ls -la" || secondary.calls != 1 {
		t.Fatalf("expected offline candidate, got %+v (calls=%d)", candidate, secondary.calls)
	}
	if gen.Name() != "remote" {
		t.Fatalf("Name should report the primary, got %s", gen.Name())
	}
}

func TestFallbackKeepsPrimaryErrorWhenBothFail(t *testing.T) {
	primaryErr := &domain.GenerationUnavailableError{Provider: "remote", Err: errors.New("HTTP 503")}
	primary := &stubGenerator{name: "remote", err: primaryErr}
	secondary := &stubGenerator{name: "offline", err: &domain.GenerationUnavailableError{Provider: "offline", Err: errNoPattern}}

	_, err := NewFallbackGenerator(primary, secondary, logger.Nop()).Generate(context.Background(), ports.GenerationRequest{})
	if !errors.Is(err, primaryErr) {
		t.Fatalf("expected primary error, got %v", err)
	}
}

func TestFallbackDoesNotRetryCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	primary := &stubGenerator{name: "remote", err: context.Canceled}
	secondary := &stubGenerator{name: "offline"}

	_, err := NewFallbackGenerator(primary, secondary, logger.Nop()).Generate(ctx, ports.GenerationRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if secondary.calls != 0 {
		t.Fatal("secondary must not run after cancellation")
	}
}

func TestFallbackPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	secondary := &stubGenerator{name: "offline"}
	_, err := NewFallbackGenerator(&stubGenerator{err: boom}, secondary, logger.Nop()).Generate(context.Background(), ports.GenerationRequest{})
	if !errors.Is(err, boom) || secondary.calls != 0 {
		t.Fatalf("got %v (secondary calls=%d)", err, secondary.calls)
	}
}
