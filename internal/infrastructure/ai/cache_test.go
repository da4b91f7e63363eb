package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/pkg/logger"
	"github.com/doeshing/aiterm/internal/ports"
)

type memCache struct {
	entries map[string]domain.CacheEntry
	getErr  error
}

func (m *memCache) Get(key string) (domain.CacheEntry, bool, error) {
	if m.getErr != nil {
		return domain.CacheEntry{}, false, m.getErr
	}
	entry, ok := m.entries[key]
	return entry, ok, nil
}

func (m *memCache) Set(entry domain.CacheEntry) error {
	if m.entries == nil {
		m.entries = map[string]domain.CacheEntry{}
	}
	m.entries[entry.Key] = entry
	return nil
}

func TestCachingGeneratorReusesCandidate(t *testing.T) {
	inner := &stubGenerator{name: "gpt", candidate: domain.CandidateCommand{Text: "ls -la", Source: "gpt"}}
	store := &memCache{}
	gen := NewCachingGenerator(inner, store, "gpt-4o-mini", logger.Nop())
	req := ports.GenerationRequest{Prompt: "list files", Env: domain.EnvironmentInfo{Dialect: domain.DialectBash}}

	for i := 0; i < 2; i++ {
		candidate, err := gen.Generate(context.Background(), req)
		if err != nil || candidate.Text != "ls -la" {
			t.Fatalf("call %d: got %q, %v", i, candidate.Text, err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("inner generator called %d times, want 1", inner.calls)
	}

	// a different shell is a different request
	req.Env.Dialect = domain.DialectPowerShell
	if _, err := gen.Generate(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Fatalf("dialect change should miss the cache, calls=%d", inner.calls)
	}
}

func TestCachingGeneratorSkipsOfflineAndErrors(t *testing.T) {
	store := &memCache{}
	offline := &stubGenerator{name: "gpt", candidate: domain.CandidateCommand{Text: "ls -la", Source: HeuristicSource}}
	gen := NewCachingGenerator(offline, store, "gpt-4o-mini", logger.Nop())
	if _, err := gen.Generate(context.Background(), ports.GenerationRequest{Prompt: "list files"}); err != nil {
		t.Fatal(err)
	}
	if len(store.entries) != 0 {
		t.Fatal("offline candidate was cached")
	}

	failing := &stubGenerator{name: "gpt", err: &domain.GenerationUnavailableError{Provider: "gpt"}}
	gen = NewCachingGenerator(failing, store, "gpt-4o-mini", logger.Nop())
	if _, err := gen.Generate(context.Background(), ports.GenerationRequest{Prompt: "list files"}); err == nil {
		t.Fatal("expected error")
	}
	if len(store.entries) != 0 {
		t.Fatal("failure was cached")
	}
}

func TestCachingGeneratorReadErrorFallsThrough(t *testing.T) {
	inner := &stubGenerator{name: "gpt", candidate: domain.CandidateCommand{Text: "pwd"}}
	gen := NewCachingGenerator(inner, &memCache{getErr: errors.New("disk gone")}, "m", logger.Nop())
	candidate, err := gen.Generate(context.Background(), ports.GenerationRequest{Prompt: "where am i"})
	if err != nil || candidate.Text != "pwd" {
		t.Fatalf("got %q, %v", candidate.Text, err)
	}
}

func TestCacheKeyNormalizesPrompt(t *testing.T) {
	env := domain.EnvironmentInfo{Dialect: domain.DialectBash, OS: "linux"}
	a := CacheKey("m", ports.GenerationRequest{Prompt: "List  all files", Env: env})
	b := CacheKey("m", ports.GenerationRequest{Prompt: "list all files ", Env: env})
	if a != b {
		t.Fatal("whitespace and case should not change the key")
	}
	if a == CacheKey("other", ports.GenerationRequest{Prompt: "list all files", Env: env}) {
		t.Fatal("model must be part of the key")
	}
}
