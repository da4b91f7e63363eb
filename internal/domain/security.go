package domain

import (
	"fmt"
	"strings"
)

// RiskLevel enumerates classifier outcomes, ordered by severity.
type RiskLevel string

const (
	RiskSafe      RiskLevel = "safe"
	RiskCaution   RiskLevel = "caution"
	RiskDangerous RiskLevel = "dangerous"
	RiskBlocked   RiskLevel = "blocked"
)

// Severity gives the level's position in the ordering; unknown levels sort lowest.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskCaution:
		return 1
	case RiskDangerous:
		return 2
	case RiskBlocked:
		return 3
	default:
		return 0
	}
}

// MoreSevere reports whether l ranks strictly above other.
func (l RiskLevel) MoreSevere(other RiskLevel) bool {
	return l.Severity() > other.Severity()
}

// ParseRiskLevel reads a level from rule tables and flags.
func ParseRiskLevel(value string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "safe":
		return RiskSafe, nil
	case "caution":
		return RiskCaution, nil
	case "dangerous":
		return RiskDangerous, nil
	case "blocked":
		return RiskBlocked, nil
	default:
		return "", fmt.Errorf("unknown risk level %q", value)
	}
}

// RuleNone is the matched-rule identifier for segments nothing matched.
const RuleNone = "none"

// RiskVerdict is the classification attached to one segment.
type RiskVerdict struct {
	Level       RiskLevel
	MatchedRule string
	Reason      string
}

// Action is the outcome of the execution policy.
type Action string

const (
	ActionExecute Action = "execute"
	ActionConfirm Action = "confirm"
	ActionBlock   Action = "block"
)

// Strictness controls whether Caution segments require confirmation.
type Strictness string

const (
	StrictnessLenient Strictness = "lenient"
	StrictnessStrict  Strictness = "strict"
)

// ParseStrictness accepts the flag/config spelling of a strictness level.
func ParseStrictness(value string) (Strictness, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "lenient":
		return StrictnessLenient, nil
	case "strict":
		return StrictnessStrict, nil
	default:
		return "", fmt.Errorf("strictness must be lenient|strict, got %q", value)
	}
}

// RunModeConfig is fixed at startup and read-only afterwards.
type RunModeConfig struct {
	SuggestOnly bool
	Strictness  Strictness
}

// ClassifiedSegment pairs a segment with its canonical form and verdict.
type ClassifiedSegment struct {
	Segment CommandSegment
	Intent  IntentTokens
	Verdict RiskVerdict
}

// ExecutionDecision is the single policy result for one invocation.
type ExecutionDecision struct {
	Action     Action
	Segments   []ClassifiedSegment
	MostSevere int
	RunMode    RunModeConfig
	Preview    bool
	Dialect    ShellDialect
	Command    string
}

// MaxLevel returns the highest verdict level across segments.
func (d ExecutionDecision) MaxLevel() RiskLevel {
	if d.MostSevere < 0 || d.MostSevere >= len(d.Segments) {
		return RiskSafe
	}
	return d.Segments[d.MostSevere].Verdict.Level
}

// Reason is the human reason of the most severe segment.
func (d ExecutionDecision) Reason() string {
	if d.MostSevere < 0 || d.MostSevere >= len(d.Segments) {
		return ""
	}
	return d.Segments[d.MostSevere].Verdict.Reason
}

// Degrade returns a copy of the decision forced to Block.
func (d ExecutionDecision) Degrade() ExecutionDecision {
	out := d
	out.Action = ActionBlock
	return out
}
