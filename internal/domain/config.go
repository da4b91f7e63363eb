package domain

// Config mirrors ~/.aiterm/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	RunMode             RunModeSettings   `yaml:"run_mode"`
	Security            SecuritySettings  `yaml:"security"`
	Execution           ExecutionSettings `yaml:"execution"`
	History             HistorySettings   `yaml:"history"`
	Cache               CacheSettings     `yaml:"cache"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel    string `yaml:"default_model"`
	TimeoutSeconds  int    `yaml:"timeout"`
	OfflineFallback bool   `yaml:"offline_fallback"`
}

// RunModeSettings are startup defaults; CLI flags take precedence.
type RunModeSettings struct {
	SuggestOnly bool   `yaml:"suggest_only"`
	Strictness  string `yaml:"strictness"`
}

// SecuritySettings points at the rule table.
type SecuritySettings struct {
	RulesFile string `yaml:"rules_file"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell          string `yaml:"shell"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// HistorySettings controls the invocation log.
type HistorySettings struct {
	Enabled       bool `yaml:"enabled"`
	RetentionDays int  `yaml:"retention_days"`
}

// CacheSettings controls the generation cache.
type CacheSettings struct {
	Enabled    bool   `yaml:"enabled"`
	TTL        string `yaml:"ttl"`
	MaxEntries int    `yaml:"max_entries"`
}
