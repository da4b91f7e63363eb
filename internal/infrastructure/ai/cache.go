package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// CachingGenerator reuses candidates for identical requests. Offline
// fallback candidates are not stored so a later call can reach the provider.
type CachingGenerator struct {
	inner  ports.Generator
	store  ports.CacheStore
	model  string
	logger ports.Logger
}

var _ ports.Generator = (*CachingGenerator)(nil)

func NewCachingGenerator(inner ports.Generator, store ports.CacheStore, model string, logger ports.Logger) *CachingGenerator {
	return &CachingGenerator{inner: inner, store: store, model: model, logger: logger}
}

func (g *CachingGenerator) Name() string {
	return g.inner.Name()
}

func (g *CachingGenerator) Generate(ctx context.Context, req ports.GenerationRequest) (domain.CandidateCommand, error) {
	key := CacheKey(g.model, req)
	if entry, ok, err := g.store.Get(key); err != nil {
		g.logger.Warn("cache read failed", map[string]interface{}{"error": err.Error()})
	} else if ok {
		g.logger.Debug("cache hit", map[string]interface{}{"model": g.model, "key": key})
		return entry.Candidate, nil
	}

	candidate, err := g.inner.Generate(ctx, req)
	if err != nil {
		return candidate, err
	}
	if candidate.Source == HeuristicSource {
		return candidate, nil
	}
	if err := g.store.Set(domain.CacheEntry{
		Key:       key,
		Model:     g.model,
		Prompt:    req.Prompt,
		Candidate: candidate,
		CreatedAt: time.Now(),
	}); err != nil {
		g.logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return candidate, nil
}

// CacheKey hashes everything that changes the generated command.
func CacheKey(model string, req ports.GenerationRequest) string {
	parts := []string{
		model,
		string(req.Env.Dialect),
		req.Env.OS,
		string(req.Env.PythonEnv),
		strings.Join(strings.Fields(strings.ToLower(req.Prompt)), " "),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:16])
}
