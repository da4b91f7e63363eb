package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRuleTableSortedBySeverity(t *testing.T) {
	table, err := DefaultRuleTable()
	if err != nil {
		t.Fatalf("DefaultRuleTable error: %v", err)
	}
	if table.Len() == 0 {
		t.Fatal("expected embedded rules")
	}
	if table.Source() != EmbeddedSource {
		t.Fatalf("unexpected source %q", table.Source())
	}
	for i := 1; i < len(table.rules); i++ {
		if table.rules[i].level.MoreSevere(table.rules[i-1].level) {
			t.Fatalf("rule %s (%s) sorted after less severe %s (%s)",
				table.rules[i].ID, table.rules[i].level, table.rules[i-1].ID, table.rules[i-1].level)
		}
	}
	if _, ok := table.TargetClasses()["root"]; !ok {
		t.Fatal("expected root target class")
	}
}

func TestLoadRuleTableFallsBackToDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		table, err := LoadRuleTable(path)
		if err != nil {
			t.Fatalf("LoadRuleTable(%q) error: %v", path, err)
		}
		if table.Source() != EmbeddedSource {
			t.Fatalf("LoadRuleTable(%q) source = %q", path, table.Source())
		}
	}
}

func TestLoadRuleTableFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `version: 1
target_classes:
  secrets: ['~/.ssh', '~/.ssh/**']
rules:
  - id: read-secrets
    level: caution
    intent: read
    targets: [secrets]
    reason: 'Reads private keys ({{.Target}})'
  - id: delete-secrets
    level: blocked
    intent: delete
    targets: [secrets]
    reason: 'Deletes private keys'
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	table, err := LoadRuleTable(path)
	if err != nil {
		t.Fatalf("LoadRuleTable error: %v", err)
	}
	if table.Source() != path || table.Len() != 2 {
		t.Fatalf("unexpected table %s with %d rules", table.Source(), table.Len())
	}
	if first := table.Rules()[0]; first.ID != "delete-secrets" {
		t.Fatalf("blocked rule should sort first, got %s", first.ID)
	}
}

func TestParseRuleTableRejectsInvalidTables(t *testing.T) {
	valid := "  - id: ok\n    level: safe\n    intent: list\n    reason: fine\n"
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"wrong version", "version: 2\nrules:\n" + valid, "unsupported version"},
		{"unknown level", "version: 1\nrules:\n  - id: a\n    level: severe\n    intent: delete\n    reason: x\n", "unknown risk level"},
		{"duplicate id", "version: 1\nrules:\n" + valid + valid, "duplicate id"},
		{"bad pattern", "version: 1\nrules:\n  - id: a\n    level: caution\n    intent: '*'\n    pattern: '('\n    reason: x\n", "compile pattern"},
		{"unknown intent", "version: 1\nrules:\n  - id: a\n    level: caution\n    intent: explode\n    reason: x\n", "unknown intent"},
		{"unknown class", "version: 1\nrules:\n  - id: a\n    level: caution\n    intent: delete\n    targets: [nowhere]\n    reason: x\n", "unknown target class"},
		{"bad template", "version: 1\nrules:\n  - id: a\n    level: caution\n    intent: delete\n    reason: '{{.Nope}}'\n", "reason template"},
		{"missing reason", "version: 1\nrules:\n  - id: a\n    level: caution\n    intent: delete\n", "missing reason"},
		{"bad glob", "version: 1\ntarget_classes:\n  broken: ['[a-']\nrules:\n" + valid, "invalid glob"},
		{"not yaml", "version: [", "parse rule table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRuleTable([]byte(tt.content), "test")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
