package config

import (
	"strings"
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
	infraconfig "github.com/doeshing/aiterm/internal/infrastructure/config"
)

func TestValidateDefaults(t *testing.T) {
	if err := Validate(infraconfig.Default()); err != nil {
		t.Fatalf("embedded defaults should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Config)
		want   string
	}{
		{"no models", func(c *domain.Config) { c.Models = nil }, "at least one model"},
		{"missing default", func(c *domain.Config) { c.Preferences.DefaultModel = "nope" }, "does not exist"},
		{"unknown provider", func(c *domain.Config) { c.Models[0].Provider = "carrier-pigeon" }, "unknown provider"},
		{"http without endpoint", func(c *domain.Config) {
			c.Models = append(c.Models, domain.ModelDefinition{Name: "bare", Provider: domain.ProviderHTTP})
		}, "requires an endpoint"},
		{"strictness", func(c *domain.Config) { c.RunMode.Strictness = "paranoid" }, "run_mode.strictness"},
		{"shell", func(c *domain.Config) { c.Execution.Shell = "tcsh" }, "execution.shell"},
		{"timeout", func(c *domain.Config) { c.Execution.TimeoutSeconds = -1 }, "execution.timeout"},
		{"retention", func(c *domain.Config) { c.History.RetentionDays = -5 }, "retention_days"},
		{"cache ttl", func(c *domain.Config) { c.Cache.TTL = "soon" }, "cache.ttl"},
		{"cache entries", func(c *domain.Config) { c.Cache.MaxEntries = -1 }, "cache.max_entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := infraconfig.Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
