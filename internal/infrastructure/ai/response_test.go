package ai

import (
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
)

func TestExtractCommand(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"prefixed", "Command: ls -la\nExplanation: lists files", "ls -la"},
		{"fenced bash", "Here you go:\n```bash\nrm -rf build\n```", "rm -rf build"},
		{"fenced powershell", "```powershell\nGet-ChildItem -Force\n```", "Get-ChildItem -Force"},
		{"fenced no language", "```\ndir /a\n```", "dir /a"},
		{"backticked prefix", "Command: `git status`", "git status"},
		{"raw", "  pwd  ", "pwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractCommand(tt.content); got != tt.want {
				t.Fatalf("extractCommand = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToCandidate(t *testing.T) {
	candidate, err := toCandidate("Command: ls -la\nExplanation: Lists every file.", "", "test")
	if err != nil {
		t.Fatalf("toCandidate error: %v", err)
	}
	if candidate.Dialect != domain.DialectBash || candidate.Explanation != "Lists every file." {
		t.Fatalf("unexpected candidate %+v", candidate)
	}
	if _, err := toCandidate("   ", domain.DialectBash, "test"); err == nil {
		t.Fatal("empty reply should be an error")
	}
}
