package domain_test

import (
	"testing"
	"time"

	"github.com/doeshing/aiterm/internal/domain"
)

func TestConfig_GetDefaultModel(t *testing.T) {
	tests := []struct {
		name        string
		config      domain.Config
		wantError   bool
		wantModelID string
	}{
		{
			name: "returns default model successfully",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "claude"},
				Models: []domain.ModelDefinition{
					{Name: "claude", ModelID: "claude-sonnet-4-5"},
					{Name: "gpt", ModelID: "gpt-4o-mini"},
				},
			},
			wantModelID: "claude-sonnet-4-5",
		},
		{
			name: "returns error when default model not found",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "nonexistent"},
				Models:      []domain.ModelDefinition{{Name: "claude"}},
			},
			wantError: true,
		},
		{
			name: "returns error when no default model configured",
			config: domain.Config{
				Models: []domain.ModelDefinition{{Name: "claude"}},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := tt.config.GetDefaultModel()
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if model.ModelID != tt.wantModelID {
				t.Errorf("got model ID %s, want %s", model.ModelID, tt.wantModelID)
			}
		})
	}
}

func TestConfig_PickModel(t *testing.T) {
	cfg := domain.Config{
		Preferences: domain.Preferences{DefaultModel: "gemini"},
		Models: []domain.ModelDefinition{
			{Name: "gemini"},
			{Name: "local", Provider: domain.ProviderHeuristic},
		},
	}

	model, err := cfg.PickModel("")
	if err != nil || model.Name != "gemini" {
		t.Fatalf("expected default model, got %+v err=%v", model, err)
	}
	model, err = cfg.PickModel("local")
	if err != nil || model.Name != "local" {
		t.Fatalf("expected override, got %+v err=%v", model, err)
	}
	if _, err := cfg.PickModel("missing"); err == nil {
		t.Fatal("expected error for unknown override")
	}
}

func TestConfig_RunModeDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   domain.RunModeSettings
		want domain.RunModeConfig
	}{
		{
			name: "empty means lenient",
			want: domain.RunModeConfig{Strictness: domain.StrictnessLenient},
		},
		{
			name: "strict and suggest-only",
			in:   domain.RunModeSettings{SuggestOnly: true, Strictness: "STRICT"},
			want: domain.RunModeConfig{SuggestOnly: true, Strictness: domain.StrictnessStrict},
		},
		{
			name: "garbage falls back to lenient",
			in:   domain.RunModeSettings{Strictness: "paranoid"},
			want: domain.RunModeConfig{Strictness: domain.StrictnessLenient},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{RunMode: tt.in}
			if got := cfg.RunModeDefaults(); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfig_ExecutionDialect(t *testing.T) {
	cfg := domain.Config{Execution: domain.ExecutionSettings{Shell: "auto"}}
	if _, ok := cfg.ExecutionDialect(); ok {
		t.Fatal("auto should not pin a dialect")
	}
	cfg.Execution.Shell = "pwsh"
	dialect, ok := cfg.ExecutionDialect()
	if !ok || dialect != domain.DialectPowerShell {
		t.Fatalf("expected powershell, got %q ok=%v", dialect, ok)
	}
}

func TestConfig_Timeouts(t *testing.T) {
	var cfg domain.Config
	if cfg.ExecutionTimeout() != domain.DefaultExecutionTimeout {
		t.Errorf("expected default execution timeout, got %s", cfg.ExecutionTimeout())
	}
	cfg.Execution.TimeoutSeconds = 5
	cfg.Preferences.TimeoutSeconds = 12
	if cfg.ExecutionTimeout() != 5*time.Second {
		t.Errorf("got %s", cfg.ExecutionTimeout())
	}
	if cfg.GenerationTimeout() != 12*time.Second {
		t.Errorf("got %s", cfg.GenerationTimeout())
	}
}

func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name      string
		config    domain.Config
		wantError bool
	}{
		{
			name: "valid configuration",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "claude"},
				Models:      []domain.ModelDefinition{{Name: "claude"}, {Name: "gpt"}},
			},
		},
		{
			name: "invalid: default model doesn't exist",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "nonexistent"},
				Models:      []domain.ModelDefinition{{Name: "claude"}},
			},
			wantError: true,
		},
		{
			name: "invalid: duplicate model names",
			config: domain.Config{
				Models: []domain.ModelDefinition{{Name: "claude"}, {Name: "claude"}},
			},
			wantError: true,
		},
		{
			name: "invalid: default model set but no models configured",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "claude"},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateConsistency()
			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
