package tokenizer

import "strings"

// groupBody is the contents of one top-level bracket in a scanned segment.
type groupBody struct {
	text  string
	whole bool // the brackets enclose the entire segment
}

// groupBodies returns the contents of top-level brackets whose contents run
// as commands: PowerShell script blocks and subexpressions, CMD blocks and
// Fish command substitutions. Brackets nested inside a recorded group are
// found again when its body is tokenized.
func groupBodies(text string, rules scanRules) []groupBody {
	if rules.groups == "" {
		return nil
	}
	var (
		out   []groupBody
		quote byte
		stack []byte
		open  = -1
		depth int
	)
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
			case quote == '"' && rules.subexpr && open < 0 && c == '$' && i+1 < len(text) && text[i+1] == '(':
				if end := closingParen(text, i+1); end > 0 {
					if body := strings.TrimSpace(text[i+2 : end]); body != "" {
						out = append(out, groupBody{text: body})
					}
					i = end
				}
			}
			continue
		}
		if c == rules.escape && rules.escape != 0 {
			i++
			continue
		}
		if strings.IndexByte(rules.quotes, c) >= 0 {
			quote = c
			continue
		}
		switch c {
		case '(', '{':
			if open < 0 && strings.IndexByte(rules.groups, c) >= 0 {
				open, depth = i, len(stack)
			}
			stack = append(stack, c)
		case ')', '}':
			if len(stack) == 0 {
				return out
			}
			stack = stack[:len(stack)-1]
			if open >= 0 && len(stack) == depth {
				if body := strings.TrimSpace(text[open+1 : i]); body != "" {
					out = append(out, groupBody{text: body, whole: open == 0 && i == len(text)-1})
				}
				open = -1
			}
		}
	}
	return out
}

// closingParen returns the offset of the parenthesis matching text[open],
// or -1.
func closingParen(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var cmdComparisons = map[string]bool{
	"==": true, "equ": true, "neq": true, "lss": true, "leq": true, "gtr": true, "geq": true,
}

// statementBody returns the command a CMD for or if statement runs: the
// text after do, or the text after the if condition.
func statementBody(text string, rules scanRules) (string, bool) {
	if !rules.statements {
		return "", false
	}
	spans := wordSpans(text, rules)
	if len(spans) < 2 {
		return "", false
	}
	word := func(i int) string {
		return strings.ToLower(text[spans[i][0]:spans[i][1]])
	}
	rest := func(i int) (string, bool) {
		if i >= len(spans) {
			return "", false
		}
		return strings.TrimSpace(text[spans[i][0]:]), true
	}

	switch word(0) {
	case "for":
		for i := 1; i < len(spans); i++ {
			if word(i) == "do" {
				return rest(i + 1)
			}
		}
	case "if":
		i := 1
		if i < len(spans) && word(i) == "/i" {
			i++
		}
		if i < len(spans) && word(i) == "not" {
			i++
		}
		switch {
		case i >= len(spans):
			return "", false
		case word(i) == "exist" || word(i) == "defined" || word(i) == "errorlevel" || word(i) == "cmdextversion":
			i += 2
		case i+1 < len(spans) && cmdComparisons[word(i+1)]:
			i += 3
		default:
			// a==b written without spaces
			i++
		}
		return rest(i)
	}
	return "", false
}

// wordSpans splits text at blanks outside quotes and parentheses.
func wordSpans(text string, rules scanRules) [][2]int {
	var (
		spans [][2]int
		start = -1
		quote byte
		depth int
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if (c == ' ' || c == '\t') && depth == 0 {
			if start >= 0 {
				spans = append(spans, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
		switch {
		case c == rules.escape && rules.escape != 0:
			i++
		case strings.IndexByte(rules.quotes, c) >= 0:
			quote = c
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(text)})
	}
	return spans
}
