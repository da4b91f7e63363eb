package domain

import (
	"fmt"
	"time"
)

// GetDefaultModel retrieves the default model definition from configuration.
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Preferences.DefaultModel == "" {
		return ModelDefinition{}, fmt.Errorf("no default model configured")
	}
	model, ok := c.FindModelByName(c.Preferences.DefaultModel)
	if !ok {
		return ModelDefinition{}, fmt.Errorf("default model %s not found in configuration", c.Preferences.DefaultModel)
	}
	return model, nil
}

// PickModel resolves an explicit override, falling back to the default model.
func (c *Config) PickModel(override string) (ModelDefinition, error) {
	if override == "" {
		return c.GetDefaultModel()
	}
	model, ok := c.FindModelByName(override)
	if !ok {
		return ModelDefinition{}, fmt.Errorf("model %s not configured", override)
	}
	return model, nil
}

// FindModelByName searches for a model by its name.
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration.
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// RunModeDefaults converts the config section into a RunModeConfig.
// An unparseable strictness falls back to lenient; Validate reports it separately.
func (c *Config) RunModeDefaults() RunModeConfig {
	strictness, err := ParseStrictness(c.RunMode.Strictness)
	if err != nil {
		strictness = StrictnessLenient
	}
	return RunModeConfig{
		SuggestOnly: c.RunMode.SuggestOnly,
		Strictness:  strictness,
	}
}

// ExecutionDialect returns the configured dialect, or false for "auto".
func (c *Config) ExecutionDialect() (ShellDialect, bool) {
	if c.Execution.Shell == "" || c.Execution.Shell == "auto" {
		return "", false
	}
	dialect, err := ParseDialect(c.Execution.Shell)
	if err != nil {
		return "", false
	}
	return dialect, true
}

// ExecutionTimeout bounds each launched process.
func (c *Config) ExecutionTimeout() time.Duration {
	if c.Execution.TimeoutSeconds <= 0 {
		return DefaultExecutionTimeout
	}
	return time.Duration(c.Execution.TimeoutSeconds) * time.Second
}

// GenerationTimeout bounds the provider call.
func (c *Config) GenerationTimeout() time.Duration {
	if c.Preferences.TimeoutSeconds <= 0 {
		return DefaultGenerationTimeout
	}
	return time.Duration(c.Preferences.TimeoutSeconds) * time.Second
}

// GetHistoryRetentionDays returns the number of days to retain history.
func (c *Config) GetHistoryRetentionDays() int {
	if c.History.RetentionDays <= 0 {
		return DefaultHistoryRetainDays
	}
	return c.History.RetentionDays
}

// GetCacheTTL parses cache.ttl, falling back to the default on error.
func (c *Config) GetCacheTTL() time.Duration {
	if c.Cache.TTL == "" {
		return DefaultCacheTTL
	}
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || ttl <= 0 {
		return DefaultCacheTTL
	}
	return ttl
}

// GetCacheMaxEntries returns the maximum number of cache entries
func (c *Config) GetCacheMaxEntries() int {
	if c.Cache.MaxEntries <= 0 {
		return DefaultMaxCacheEntries
	}
	return c.Cache.MaxEntries
}

// ValidateConsistency checks the internal consistency of the configuration.
func (c *Config) ValidateConsistency() error {
	if c.Preferences.DefaultModel != "" && len(c.Models) == 0 {
		return fmt.Errorf("default model is set but no models are configured")
	}
	if c.Preferences.DefaultModel != "" && !c.HasModel(c.Preferences.DefaultModel) {
		return fmt.Errorf("default model %s does not exist in models list", c.Preferences.DefaultModel)
	}
	seen := make(map[string]bool, len(c.Models))
	for _, model := range c.Models {
		if seen[model.Name] {
			return fmt.Errorf("model %s declared twice", model.Name)
		}
		seen[model.Name] = true
	}
	return nil
}
