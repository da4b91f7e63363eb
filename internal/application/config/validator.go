package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/aiterm/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return errors.New("at least one model must be configured")
	}
	if cfg.Preferences.DefaultModel == "" {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	for _, model := range cfg.Models {
		if err := validateModel(model); err != nil {
			return err
		}
	}
	if cfg.Preferences.TimeoutSeconds < 0 {
		return fmt.Errorf("preferences.timeout must be >= 0")
	}
	if err := validateRunMode(cfg.RunMode); err != nil {
		return err
	}
	if err := validateExecution(cfg.Execution); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if err := validateCache(cfg.Cache); err != nil {
		return err
	}
	return nil
}

func validateCache(cache domain.CacheSettings) error {
	if cache.TTL != "" {
		ttl, err := time.ParseDuration(cache.TTL)
		if err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
		if ttl <= 0 {
			return fmt.Errorf("cache.ttl must be positive")
		}
	}
	if cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0")
	}
	return nil
}

func validateModel(model domain.ModelDefinition) error {
	if model.Name == "" {
		return errors.New("model name must be set")
	}
	switch model.Provider {
	case domain.ProviderOpenAI, domain.ProviderAnthropic, domain.ProviderHeuristic, "":
	case domain.ProviderHTTP:
		if model.Endpoint == "" {
			return fmt.Errorf("model %s: http provider requires an endpoint", model.Name)
		}
	default:
		return fmt.Errorf("model %s: unknown provider %q", model.Name, model.Provider)
	}
	if model.MaxTokens < 0 {
		return fmt.Errorf("model %s: max_tokens must be >= 0", model.Name)
	}
	return nil
}

func validateRunMode(mode domain.RunModeSettings) error {
	if _, err := domain.ParseStrictness(mode.Strictness); err != nil {
		return fmt.Errorf("run_mode.strictness: %w", err)
	}
	return nil
}

func validateExecution(exec domain.ExecutionSettings) error {
	if exec.Shell != "" && exec.Shell != "auto" {
		if _, err := domain.ParseDialect(exec.Shell); err != nil {
			return fmt.Errorf("execution.shell: %w", err)
		}
	}
	if exec.TimeoutSeconds < 0 {
		return fmt.Errorf("execution.timeout must be >= 0")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	if history.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days must be >= 0")
	}
	return nil
}
