package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
)

func TestGlobalFlagsRunMode(t *testing.T) {
	cfg := domain.Config{RunMode: domain.RunModeSettings{SuggestOnly: false, Strictness: "lenient"}}

	tests := []struct {
		name  string
		flags GlobalFlags
		want  domain.RunModeConfig
	}{
		{"config defaults", GlobalFlags{}, domain.RunModeConfig{Strictness: domain.StrictnessLenient}},
		{"suggest only", GlobalFlags{SuggestOnly: true}, domain.RunModeConfig{SuggestOnly: true, Strictness: domain.StrictnessLenient}},
		{"strictness flag", GlobalFlags{Strictness: "strict"}, domain.RunModeConfig{Strictness: domain.StrictnessStrict}},
		{"strict wins", GlobalFlags{Strict: true, Strictness: "lenient"}, domain.RunModeConfig{Strictness: domain.StrictnessStrict}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.RunMode(cfg)
			if err != nil {
				t.Fatalf("RunMode error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("RunMode = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := (GlobalFlags{Strictness: "paranoid"}).RunMode(cfg); err == nil {
		t.Fatal("expected error for unknown strictness")
	}
}

func TestGlobalFlagsRunModeKeepsConfiguredSuggestOnly(t *testing.T) {
	cfg := domain.Config{RunMode: domain.RunModeSettings{SuggestOnly: true, Strictness: "strict"}}
	got, err := GlobalFlags{}.RunMode(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !got.SuggestOnly || got.Strictness != domain.StrictnessStrict {
		t.Fatalf("config defaults lost: %+v", got)
	}
}

func TestGlobalFlagsDialect(t *testing.T) {
	for shell, want := range map[string]domain.ShellDialect{"": "", "auto": "", "bash": domain.DialectBash, "pwsh": domain.DialectPowerShell, "cmd": domain.DialectCMD} {
		got, err := GlobalFlags{Shell: shell}.Dialect()
		if err != nil {
			t.Fatalf("Dialect(%q) error: %v", shell, err)
		}
		if got != want {
			t.Errorf("Dialect(%q) = %q, want %q", shell, got, want)
		}
	}
	if _, err := (GlobalFlags{Shell: "tcsh"}).Dialect(); err == nil {
		t.Fatal("expected error for unsupported shell")
	}
}

func TestValidateRules(t *testing.T) {
	var out bytes.Buffer
	if err := validateRules(&out, ""); err != nil {
		t.Fatalf("embedded table invalid: %v", err)
	}
	if !strings.Contains(out.String(), "embedded defaults") {
		t.Fatalf("unexpected output %q", out.String())
	}

	bad := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(bad, []byte("version: 1\nrules:\n  - id: x\n    level: scary\n    intent: delete\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := validateRules(&out, bad); err == nil {
		t.Fatal("expected validation error")
	}
}
