// Package security assigns risk verdicts to canonicalized command segments
// using a declarative rule table.
package security

import (
	"fmt"
	"strings"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// MaxInlineDepth bounds recursion into bash -c / cmd /c bodies.
const MaxInlineDepth = 2

// Built-in rule identifiers.
const (
	RuleUnrecognized    = "unrecognized"
	RuleInlineMalformed = "inline-malformed"
	RuleInlineTooDeep   = "inline-too-deep"
)

// Classifier implements ports.Classifier over a RuleTable.
type Classifier struct {
	table     *RuleTable
	tokenizer ports.Tokenizer
	mapper    ports.Canonicalizer
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier wires a classifier. The tokenizer and mapper are used to
// inspect inline scripts.
func NewClassifier(table *RuleTable, tokenizer ports.Tokenizer, mapper ports.Canonicalizer) *Classifier {
	return &Classifier{table: table, tokenizer: tokenizer, mapper: mapper}
}

// Classify returns the verdict of the first matching rule, raised to the
// verdict of any inline script the segment carries.
func (c *Classifier) Classify(tokens domain.IntentTokens) domain.RiskVerdict {
	return c.classify(tokens, 0)
}

// ClassifyAll classifies every segment; none is skipped.
func (c *Classifier) ClassifyAll(tokens []domain.IntentTokens) []domain.RiskVerdict {
	out := make([]domain.RiskVerdict, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, c.Classify(t))
	}
	return out
}

func (c *Classifier) classify(tokens domain.IntentTokens, depth int) domain.RiskVerdict {
	verdict := c.match(tokens)
	raise := func(inner domain.RiskVerdict) {
		if inner.Level.MoreSevere(verdict.Level) {
			verdict = inner
		}
	}

	// Compound bodies and substitutions are part of the same script and
	// strictly shorter than it, so they do not count toward the inline depth.
	for _, body := range tokens.Embedded {
		if len(body) < len(tokens.Text) {
			raise(c.classifyInline(body, tokens.Dialect, depth))
		}
	}
	if tokens.Inline == "" {
		return verdict
	}
	next := depth + 1
	if tokens.Intent == domain.IntentCompound && len(tokens.Inline) < len(tokens.Text) {
		next = depth
	}
	raise(c.classifyInline(tokens.Inline, tokens.InlineDialect, next))
	return verdict
}

func (c *Classifier) classifyInline(text string, dialect domain.ShellDialect, depth int) domain.RiskVerdict {
	if depth > MaxInlineDepth {
		return domain.RiskVerdict{
			Level:       domain.RiskCaution,
			MatchedRule: RuleInlineTooDeep,
			Reason:      "Inline scripts are nested too deeply to inspect",
		}
	}
	if dialect == "" {
		dialect = domain.DialectBash
	}
	segments, err := c.tokenizer.Tokenize(text, dialect)
	if err != nil {
		return domain.RiskVerdict{
			Level:       domain.RiskCaution,
			MatchedRule: RuleInlineMalformed,
			Reason:      fmt.Sprintf("Inline script could not be parsed: %v", err),
		}
	}
	worst := safeVerdict()
	for _, tokens := range c.mapper.CanonicalizeAll(segments) {
		if v := c.classify(tokens, depth); v.Level.MoreSevere(worst.Level) {
			worst = v
		}
	}
	return worst
}

func (c *Classifier) match(tokens domain.IntentTokens) domain.RiskVerdict {
	if tokens.Intent == domain.IntentEmpty {
		return safeVerdict()
	}
	if c.table != nil {
		for _, rule := range c.table.rules {
			if rule.matches(tokens) {
				return domain.RiskVerdict{Level: rule.level, MatchedRule: rule.ID, Reason: rule.render(tokens)}
			}
		}
	}
	if tokens.Intent == domain.IntentUnrecognized {
		return domain.RiskVerdict{
			Level:       domain.RiskCaution,
			MatchedRule: RuleUnrecognized,
			Reason:      fmt.Sprintf("Unrecognized command %q; review it before running", tokens.Program),
		}
	}
	return safeVerdict()
}

func safeVerdict() domain.RiskVerdict {
	return domain.RiskVerdict{Level: domain.RiskSafe, MatchedRule: domain.RuleNone}
}

func (r compiledRule) matches(t domain.IntentTokens) bool {
	if r.Intent != "*" && r.Intent != string(t.Intent) {
		return false
	}
	if len(r.Programs) > 0 && !contains(r.Programs, t.Program) {
		return false
	}
	if len(r.Subcommands) > 0 && !contains(r.Subcommands, t.Subcommand) {
		return false
	}
	for _, mod := range r.Modifiers {
		if !t.Has(mod) {
			return false
		}
	}
	for _, mod := range r.ExcludeModifiers {
		if t.Has(mod) {
			return false
		}
	}
	if len(r.Targets) > 0 && !anyIn(r.Targets, t.TargetClasses) {
		return false
	}
	if len(r.Redirects) > 0 && !anyIn(r.Redirects, t.RedirectClasses) {
		return false
	}
	if r.Upstream != "" && r.Upstream != string(t.Upstream) {
		return false
	}
	if r.Elevated != nil && *r.Elevated != t.Elevated {
		return false
	}
	if r.pattern != nil && !r.pattern.MatchString(t.Text) {
		return false
	}
	return true
}

// reasonData is what reason templates can reference.
type reasonData struct {
	Program    string
	Subcommand string
	Target     string
	Text       string
	Intent     string
}

func (r compiledRule) render(t domain.IntentTokens) string {
	if r.reason == nil {
		return r.Reason
	}
	target := strings.Join(t.Targets, " ")
	if target == "" {
		target = t.Text
	}
	var sb strings.Builder
	data := reasonData{
		Program:    t.Program,
		Subcommand: t.Subcommand,
		Target:     target,
		Text:       t.Text,
		Intent:     string(t.Intent),
	}
	if err := r.reason.Execute(&sb, data); err != nil {
		return r.Reason
	}
	return strings.TrimSpace(strings.ReplaceAll(sb.String(), " )", ")"))
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func anyIn(names []string, set map[string]bool) bool {
	for _, name := range names {
		if set[name] {
			return true
		}
	}
	return false
}
