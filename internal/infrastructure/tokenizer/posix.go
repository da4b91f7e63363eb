package tokenizer

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/doeshing/aiterm/internal/domain"
)

func tokenizePOSIX(text string, dialect domain.ShellDialect) ([]domain.CommandSegment, error) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(text), "")
	if err != nil {
		return nil, malformed(text, err.Error())
	}

	w := &posixWalker{src: text, printer: syntax.NewPrinter()}
	for i, stmt := range file.Stmts {
		op := domain.OpSequential
		if i == 0 {
			op = domain.OpNone
		}
		w.walk(stmt, op)
	}
	return w.segments, nil
}

type posixWalker struct {
	src      string
	printer  *syntax.Printer
	segments []domain.CommandSegment
}

// walk flattens binary commands left to right; op applies to the first leaf.
// Compound commands stay one segment whose bodies are kept in Nested.
func (w *posixWalker) walk(stmt *syntax.Stmt, op domain.ChainOperator) {
	if stmt == nil {
		return
	}
	if bin, ok := stmt.Cmd.(*syntax.BinaryCmd); ok && len(stmt.Redirs) == 0 && !stmt.Negated {
		w.walk(bin.X, op)
		w.walk(bin.Y, binaryOperator(bin.Op))
		return
	}

	seg := domain.CommandSegment{
		Text:          w.slice(stmt.Pos(), stmt.End()),
		Operator:      op,
		Redirects:     w.redirectTargets(stmt.Redirs),
		Substitutions: w.substitutions(stmt),
	}
	if call, ok := stmt.Cmd.(*syntax.CallExpr); ok {
		for _, arg := range call.Args {
			seg.Words = append(seg.Words, w.literal(arg))
		}
	} else {
		seg.Nested = w.nested(stmt.Cmd)
	}
	w.segments = append(w.segments, seg)
}

// nested returns the source of every statement list a compound command
// runs, one list per line.
func (w *posixWalker) nested(cmd syntax.Command) string {
	var parts []string
	add := func(stmts []*syntax.Stmt) {
		if body := w.body(stmts); body != "" {
			parts = append(parts, body)
		}
	}
	switch c := cmd.(type) {
	case *syntax.Subshell:
		add(c.Stmts)
	case *syntax.Block:
		add(c.Stmts)
	case *syntax.FuncDecl:
		if c.Body != nil {
			add([]*syntax.Stmt{c.Body})
		}
	case *syntax.IfClause:
		for clause := c; clause != nil; clause = clause.Else {
			add(clause.Cond)
			add(clause.Then)
		}
	case *syntax.WhileClause:
		add(c.Cond)
		add(c.Do)
	case *syntax.ForClause:
		add(c.Do)
	case *syntax.CaseClause:
		for _, item := range c.Items {
			add(item.Stmts)
		}
	case *syntax.TimeClause:
		if c.Stmt != nil {
			add([]*syntax.Stmt{c.Stmt})
		}
	case *syntax.CoprocClause:
		if c.Stmt != nil {
			add([]*syntax.Stmt{c.Stmt})
		}
	case *syntax.BinaryCmd:
		// negated pipelines such as ! a | b
		add([]*syntax.Stmt{c.X, c.Y})
	}
	return strings.Join(parts, "\n")
}

// substitutions collects the source of command and process substitutions
// in the statement's own words. Child statements are left to nested, and
// substitutions inside a substitution are found when its source is parsed.
func (w *posixWalker) substitutions(stmt *syntax.Stmt) []string {
	var out []string
	syntax.Walk(stmt, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.Stmt:
			return n == stmt
		case *syntax.CmdSubst:
			if body := w.body(n.Stmts); body != "" {
				out = append(out, body)
			}
			return false
		case *syntax.ProcSubst:
			if body := w.body(n.Stmts); body != "" {
				out = append(out, body)
			}
			return false
		}
		return true
	})
	return out
}

func (w *posixWalker) body(stmts []*syntax.Stmt) string {
	if len(stmts) == 0 {
		return ""
	}
	return w.slice(stmts[0].Pos(), stmts[len(stmts)-1].End())
}

func (w *posixWalker) slice(from, to syntax.Pos) string {
	start, end := int(from.Offset()), int(to.Offset())
	if start < 0 || end > len(w.src) || start >= end {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(w.src[start:end]), ";&")
}

func (w *posixWalker) redirectTargets(redirs []*syntax.Redirect) []string {
	var out []string
	for _, redir := range redirs {
		switch redir.Op {
		case syntax.RdrOut, syntax.AppOut, syntax.ClbOut, syntax.RdrAll, syntax.AppAll:
			if redir.Word != nil {
				out = append(out, w.literal(redir.Word))
			}
		}
	}
	return out
}

// literal removes quoting so "file", 'file' and file compare equal.
func (w *posixWalker) literal(word *syntax.Word) string {
	var sb strings.Builder
	for _, part := range word.Parts {
		w.writePart(&sb, part, false)
	}
	return sb.String()
}

func (w *posixWalker) writePart(sb *strings.Builder, part syntax.WordPart, quoted bool) {
	switch p := part.(type) {
	case *syntax.Lit:
		if quoted {
			sb.WriteString(unescapeQuoted(p.Value))
		} else {
			sb.WriteString(unescape(p.Value))
		}
	case *syntax.SglQuoted:
		sb.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			w.writePart(sb, inner, true)
		}
	default:
		_ = w.printer.Print(sb, part)
	}
}

func unescape(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	var sb strings.Builder
	for i := 0; i < len(value); i++ {
		if value[i] == '\\' && i+1 < len(value) {
			i++
		}
		sb.WriteByte(value[i])
	}
	return sb.String()
}

// unescapeQuoted applies the backslash rules of double quotes, where only
// $ ` " \ and newline are escapable.
func unescapeQuoted(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	var sb strings.Builder
	for i := 0; i < len(value); i++ {
		if value[i] == '\\' && i+1 < len(value) && strings.IndexByte("$`\"\\\n", value[i+1]) >= 0 {
			i++
		}
		sb.WriteByte(value[i])
	}
	return sb.String()
}

func binaryOperator(op syntax.BinCmdOperator) domain.ChainOperator {
	switch op {
	case syntax.AndStmt:
		return domain.OpAnd
	case syntax.OrStmt:
		return domain.OpOr
	case syntax.Pipe, syntax.PipeAll:
		return domain.OpPipe
	default:
		return domain.OpSequential
	}
}
