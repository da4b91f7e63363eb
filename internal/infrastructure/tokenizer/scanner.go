package tokenizer

import (
	"fmt"
	"strings"

	"github.com/doeshing/aiterm/internal/domain"
)

// scanRules describes the lexical surface of a non-POSIX dialect.
type scanRules struct {
	quotes        string
	escape        byte
	escapeSingle  bool   // escape char is honoured inside single quotes
	escapeDouble  bool   // escape char is honoured inside double quotes
	doubledQuotes bool   // '' inside '...' is a literal quote (PowerShell)
	semicolon     bool   // ; separates statements
	ampersand     bool   // a lone & separates statements
	keywords      bool   // leading and/or chain to the previous statement (Fish)
	groups        string // brackets whose contents run as commands
	subexpr       bool   // $(...) is evaluated inside double quotes (PowerShell)
	statements    bool   // for ... do and if ... bodies follow the header (CMD)
}

var dialectScanRules = map[domain.ShellDialect]scanRules{
	domain.DialectCMD: {
		quotes:     `"`,
		escape:     '^',
		ampersand:  true,
		groups:     "(",
		statements: true,
	},
	domain.DialectPowerShell: {
		quotes:        `'"`,
		escape:        '`',
		escapeDouble:  true,
		doubledQuotes: true,
		semicolon:     true,
		groups:        "({",
		subexpr:       true,
	},
	domain.DialectFish: {
		quotes:       `'"`,
		escape:       '\\',
		escapeSingle: true,
		escapeDouble: true,
		semicolon:    true,
		ampersand:    true,
		keywords:     true,
		groups:       "(",
	},
}

func scanRulesFor(dialect domain.ShellDialect) (scanRules, bool) {
	rules, ok := dialectScanRules[dialect]
	return rules, ok
}

func (r scanRules) escapes(quote byte) bool {
	if r.escape == 0 {
		return false
	}
	switch quote {
	case 0:
		return true
	case '\'':
		return r.escapeSingle
	default:
		return r.escapeDouble
	}
}

type rawSegment struct {
	text string
	op   domain.ChainOperator
}

func tokenizeScanned(text string, dialect domain.ShellDialect, rules scanRules) ([]domain.CommandSegment, error) {
	raws, err := splitChain(text, rules)
	if err != nil {
		return nil, err
	}
	segments := make([]domain.CommandSegment, 0, len(raws))
	for _, raw := range raws {
		if rules.keywords {
			raw = applyKeyword(raw)
			if raw.text == "" {
				return nil, malformed(text, fmt.Sprintf("%s keyword without a command", raw.op))
			}
		}
		seg := domain.CommandSegment{Text: raw.text, Operator: raw.op}
		bodies := groupBodies(raw.text, rules)
		if len(bodies) == 1 && bodies[0].whole {
			seg.Nested = bodies[0].text
			segments = append(segments, seg)
			continue
		}
		seg.Words, seg.Redirects = splitWords(raw.text, rules)
		if body, ok := statementBody(raw.text, rules); ok {
			seg.Nested = body
		} else {
			for _, b := range bodies {
				seg.Substitutions = append(seg.Substitutions, b.text)
			}
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// splitChain cuts text at top-level chain operators.
func splitChain(text string, rules scanRules) ([]rawSegment, error) {
	var (
		out     []rawSegment
		start   int
		pending = domain.OpNone
		quote   byte
		stack   []byte
	)

	// blank statements are tolerated between ; and newline separators only
	cut := func(end int, next domain.ChainOperator, symbol byte) error {
		chunk := strings.TrimSpace(text[start:end])
		if chunk == "" {
			if (symbol == ';' || symbol == '\n') && (pending == domain.OpNone || pending == domain.OpSequential) {
				return nil
			}
			return malformed(text, fmt.Sprintf("%q operator without a command", next.Symbol()))
		}
		out = append(out, rawSegment{text: chunk, op: pending})
		pending = next
		return nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case c == rules.escape && rules.escapes(quote):
				i++
			case c == quote && rules.doubledQuotes && quote == '\'' && i+1 < len(text) && text[i+1] == '\'':
				i++
			case c == quote:
				quote = 0
			}
			continue
		}
		if c == rules.escape && rules.escape != 0 {
			if i == len(text)-1 {
				return nil, malformed(text, fmt.Sprintf("dangling %c escape", c))
			}
			i++
			continue
		}
		if strings.IndexByte(rules.quotes, c) >= 0 {
			quote = c
			continue
		}
		switch c {
		case '(', '{':
			stack = append(stack, c)
			continue
		case ')', '}':
			open := byte('(')
			if c == '}' {
				open = '{'
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return nil, malformed(text, fmt.Sprintf("unbalanced %q at offset %d", c, i))
			}
			stack = stack[:len(stack)-1]
			continue
		}
		if len(stack) > 0 {
			continue
		}
		op, width := operatorAt(text, i, rules)
		if width == 0 {
			continue
		}
		if err := cut(i, op, c); err != nil {
			return nil, err
		}
		i += width - 1
		start = i + 1
	}

	if quote != 0 {
		return nil, malformed(text, fmt.Sprintf("unterminated %c quote", quote))
	}
	if len(stack) > 0 {
		return nil, malformed(text, fmt.Sprintf("unclosed %q", stack[len(stack)-1]))
	}
	chunk := strings.TrimSpace(text[start:])
	if chunk == "" {
		if pending != domain.OpNone && pending != domain.OpSequential {
			return nil, malformed(text, fmt.Sprintf("dangling %q operator", pending.Symbol()))
		}
		return out, nil
	}
	out = append(out, rawSegment{text: chunk, op: pending})
	return out, nil
}

// operatorAt returns the chain operator starting at i and its width, or width 0.
func operatorAt(text string, i int, rules scanRules) (domain.ChainOperator, int) {
	c := text[i]
	next := byte(0)
	if i+1 < len(text) {
		next = text[i+1]
	}
	prev := byte(0)
	if i > 0 {
		prev = text[i-1]
	}
	switch c {
	case '\n':
		return domain.OpSequential, 1
	case '&':
		if next == '&' {
			return domain.OpAnd, 2
		}
		// redirect duplication such as 2>&1 or fish &>file
		if !rules.ampersand || prev == '>' || prev == '<' || next == '>' {
			return domain.OpNone, 0
		}
		return domain.OpSequential, 1
	case '|':
		if next == '|' {
			return domain.OpOr, 2
		}
		return domain.OpPipe, 1
	case ';':
		if rules.semicolon {
			return domain.OpSequential, 1
		}
	}
	return domain.OpNone, 0
}

// applyKeyword turns Fish "and cmd"/"or cmd" statements into chain operators.
func applyKeyword(raw rawSegment) rawSegment {
	fields := strings.Fields(raw.text)
	if len(fields) == 0 || raw.op != domain.OpSequential {
		return raw
	}
	switch fields[0] {
	case "and":
		raw.op = domain.OpAnd
	case "or":
		raw.op = domain.OpOr
	default:
		return raw
	}
	raw.text = strings.TrimSpace(strings.TrimPrefix(raw.text, fields[0]))
	return raw
}

// splitWords breaks one segment into quote-free words and output redirect targets.
func splitWords(text string, rules scanRules) ([]string, []string) {
	var (
		words     []string
		redirects []string
		cur       strings.Builder
		inWord    bool
		quote     byte
		target    int // 0 none, 1 output target pending, 2 input target pending
	)

	flush := func() {
		if !inWord {
			return
		}
		word := cur.String()
		cur.Reset()
		inWord = false
		switch target {
		case 1:
			redirects = append(redirects, word)
		case 2:
		default:
			words = append(words, word)
		}
		target = 0
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case c == rules.escape && rules.escapes(quote) && i+1 < len(text):
				i++
				cur.WriteByte(text[i])
			case c == quote && rules.doubledQuotes && quote == '\'' && i+1 < len(text) && text[i+1] == '\'':
				i++
				cur.WriteByte('\'')
			case c == quote:
				quote = 0
			default:
				cur.WriteByte(c)
			}
			continue
		}
		switch {
		case c == rules.escape && rules.escape != 0 && i+1 < len(text):
			i++
			cur.WriteByte(text[i])
			inWord = true
		case strings.IndexByte(rules.quotes, c) >= 0:
			quote = c
			inWord = true
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			flush()
		case c == '>' || c == '<':
			// a bare fd number or PowerShell stream selector belongs to the redirect
			if inWord && isStreamSelector(cur.String()) {
				cur.Reset()
				inWord = false
			} else {
				flush()
			}
			kind := 1
			if c == '<' {
				kind = 2
			}
			for i+1 < len(text) && text[i+1] == c {
				i++
			}
			if i+1 < len(text) && text[i+1] == '&' {
				i++
				for i+1 < len(text) && isDigit(text[i+1]) {
					i++
				}
				continue
			}
			target = kind
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	flush()
	return words, redirects
}

func isStreamSelector(word string) bool {
	if word == "*" {
		return true
	}
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if !isDigit(word[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
