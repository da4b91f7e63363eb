// Package policy reduces per-segment verdicts to one execution decision.
package policy

import (
	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// Engine runs tokenize, canonicalize and classify, then decides.
type Engine struct {
	tokenizer  ports.Tokenizer
	mapper     ports.Canonicalizer
	classifier ports.Classifier
}

var _ ports.PolicyEvaluator = (*Engine)(nil)

// NewEngine wires the engine's collaborators.
func NewEngine(tokenizer ports.Tokenizer, mapper ports.Canonicalizer, classifier ports.Classifier) *Engine {
	return &Engine{tokenizer: tokenizer, mapper: mapper, classifier: classifier}
}

// Evaluate produces the decision for a candidate. Tokenizer errors
// (*domain.MalformedCommandError) are returned unchanged and no decision is made.
func (e *Engine) Evaluate(candidate domain.CandidateCommand, mode domain.RunModeConfig) (domain.ExecutionDecision, error) {
	segments, err := e.tokenizer.Tokenize(candidate.Text, candidate.Dialect)
	if err != nil {
		return domain.ExecutionDecision{}, err
	}
	intents := e.mapper.CanonicalizeAll(segments)

	classified := make([]domain.ClassifiedSegment, 0, len(segments))
	for i, seg := range segments {
		classified = append(classified, domain.ClassifiedSegment{
			Segment: seg,
			Intent:  intents[i],
			Verdict: e.classifier.Classify(intents[i]),
		})
	}

	decision := Decide(classified, mode)
	decision.Dialect = candidate.Dialect
	decision.Command = candidate.Text
	return decision, nil
}

// Decide is the pure reduction:
//
//	Block   if any segment is blocked, or suggest-only is set (Preview)
//	Confirm if any segment is dangerous, or caution under strict
//	Execute otherwise
//
// MostSevere is the first segment holding the highest level.
func Decide(segments []domain.ClassifiedSegment, mode domain.RunModeConfig) domain.ExecutionDecision {
	decision := domain.ExecutionDecision{
		Segments:   segments,
		MostSevere: -1,
		RunMode:    mode,
	}

	worst := domain.RiskSafe
	for i, seg := range segments {
		if decision.MostSevere < 0 || seg.Verdict.Level.MoreSevere(worst) {
			decision.MostSevere = i
			worst = seg.Verdict.Level
		}
	}

	switch {
	case worst == domain.RiskBlocked:
		decision.Action = domain.ActionBlock
	case mode.SuggestOnly:
		decision.Action = domain.ActionBlock
		decision.Preview = true
	case worst == domain.RiskDangerous:
		decision.Action = domain.ActionConfirm
	case worst == domain.RiskCaution && mode.Strictness == domain.StrictnessStrict:
		decision.Action = domain.ActionConfirm
	default:
		decision.Action = domain.ActionExecute
	}
	return decision
}
