// Package tokenizer splits candidate command text into chained segments.
//
// Bash and Zsh text is parsed with mvdan.cc/sh; CMD, PowerShell and Fish use a
// quote-aware scanner with per-dialect operator tables. Both paths normalize
// quoting in arguments and reject unbalanced quotes or brackets.
package tokenizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// Tokenizer is stateless; one value can serve every dialect.
type Tokenizer struct{}

// New returns a Tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// typographic quotes that generators sometimes emit in place of ASCII quotes
var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

// Normalize applies NFKC and ASCII quote folding.
func Normalize(text string) string {
	return strings.TrimSpace(quoteReplacer.Replace(norm.NFKC.String(text)))
}

// Tokenize implements ports.Tokenizer.
func (t *Tokenizer) Tokenize(text string, dialect domain.ShellDialect) ([]domain.CommandSegment, error) {
	normalized := Normalize(text)
	if normalized == "" {
		return nil, nil
	}

	var (
		segments []domain.CommandSegment
		err      error
	)
	switch {
	case dialect.IsPOSIX():
		segments, err = tokenizePOSIX(normalized, dialect)
	default:
		rules, ok := scanRulesFor(dialect)
		if !ok {
			return nil, &domain.MalformedCommandError{Text: text, Reason: "unsupported dialect " + string(dialect)}
		}
		segments, err = tokenizeScanned(normalized, dialect, rules)
	}
	if err != nil {
		return nil, err
	}

	for i := range segments {
		segments[i].Index = i
		segments[i].Dialect = dialect
		if i == 0 {
			segments[i].Operator = domain.OpNone
		}
	}
	return segments, nil
}

func malformed(text, reason string) error {
	return &domain.MalformedCommandError{Text: text, Reason: reason}
}

var _ ports.Tokenizer = (*Tokenizer)(nil)
