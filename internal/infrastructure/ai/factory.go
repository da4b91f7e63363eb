package ai

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// Factory creates generators from model definitions. It shares one HTTP
// client across all of them.
type Factory struct {
	httpClient      *http.Client
	offlineFallback bool
	cache           ports.CacheStore
	logger          ports.Logger
}

// NewFactory creates a factory. With offlineFallback every network
// generator is chained to the heuristic one.
func NewFactory(offlineFallback bool, logger ports.Logger) *Factory {
	return &Factory{
		httpClient:      &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
		offlineFallback: offlineFallback,
		logger:          logger,
	}
}

// WithCache makes network generators reuse candidates from store.
func (f *Factory) WithCache(store ports.CacheStore) *Factory {
	f.cache = store
	return f
}

// ForModel builds the generator for the model's provider.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Generator, error) {
	kind := model.Provider
	if kind == "" {
		kind = inferProviderKind(model.Endpoint)
	}

	var gen ports.Generator
	switch kind {
	case domain.ProviderOpenAI:
		gen = NewOpenAIGenerator(model, f.httpClient)
	case domain.ProviderAnthropic:
		gen = NewAnthropicGenerator(model, f.httpClient)
	case domain.ProviderHTTP:
		if model.Endpoint == "" {
			return nil, fmt.Errorf("model %s: http provider requires an endpoint", model.Name)
		}
		gen = NewHTTPGenerator(model, f.httpClient)
	case domain.ProviderHeuristic:
		return NewHeuristicGenerator(model.Name), nil
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", kind)
	}

	if f.offlineFallback {
		gen = NewFallbackGenerator(gen, NewHeuristicGenerator(HeuristicSource), f.logger)
	}
	if f.cache != nil {
		gen = NewCachingGenerator(gen, f.cache, model.Name, f.logger)
	}
	return gen, nil
}

func inferProviderKind(endpoint string) domain.ProviderKind {
	switch {
	case strings.Contains(endpoint, "anthropic.com"):
		return domain.ProviderAnthropic
	case strings.Contains(endpoint, "openai.com"):
		return domain.ProviderOpenAI
	case endpoint != "":
		return domain.ProviderHTTP
	default:
		return domain.ProviderHeuristic
	}
}

var _ ports.GeneratorFactory = (*Factory)(nil)
