package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/cli/helpers"
)

func dangerousDecision() domain.ExecutionDecision {
	return domain.ExecutionDecision{
		Action:  domain.ActionConfirm,
		Command: "rm -rf build",
		Segments: []domain.ClassifiedSegment{{
			Segment: domain.CommandSegment{Text: "rm -rf build"},
			Verdict: domain.RiskVerdict{Level: domain.RiskDangerous, MatchedRule: "delete-recursive", Reason: "Recursive delete of build"},
		}},
	}
}

func TestPrompterConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "yes\n": true, "\n": false, "no\n": false, "": false} {
		var out bytes.Buffer
		p := NewInteractivePrompter(strings.NewReader(input), &out, helpers.NewRendererWithColor(false))
		got, err := p.Confirm(context.Background(), dangerousDecision())
		if err != nil {
			t.Fatalf("Confirm(%q) error: %v", input, err)
		}
		if got != want {
			t.Errorf("Confirm(%q) = %v, want %v", input, got, want)
		}
		if !strings.Contains(out.String(), "[DANGEROUS] rm -rf build") {
			t.Errorf("prompt did not show the command: %q", out.String())
		}
	}
}

func TestPrompterNonInteractiveDeclines(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("y\n"), &out, helpers.NewRendererWithColor(false))
	ok, err := p.Confirm(context.Background(), dangerousDecision())
	if err != nil || ok {
		t.Fatalf("expected refusal, got %v, %v", ok, err)
	}
}
