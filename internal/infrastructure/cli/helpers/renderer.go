package helpers

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/doeshing/aiterm/internal/domain"
)

const markdownWidth = 80

var (
	colorSafe      = lipgloss.Color("#2ECC71")
	colorCaution   = lipgloss.Color("#F1C40F")
	colorDangerous = lipgloss.Color("#E67E22")
	colorBlocked   = lipgloss.Color("#ff6b6b")
	colorMuted     = lipgloss.Color("#808080")
)

// Renderer formats responses for the terminal. Styling is dropped when the
// output is not a TTY.
type Renderer struct {
	color    bool
	markdown *glamour.TermRenderer
	now      func() time.Time
}

// NewRenderer inspects out to decide whether to style.
func NewRenderer(out io.Writer) *Renderer {
	return NewRendererWithColor(isTerminal(out))
}

// NewRendererWithColor forces styling on or off.
func NewRendererWithColor(color bool) *Renderer {
	r := &Renderer{color: color, now: time.Now}
	if color {
		term, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(markdownWidth),
		)
		if err == nil {
			r.markdown = term
		}
	}
	return r
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// Badge renders a risk level label.
func (r *Renderer) Badge(level domain.RiskLevel) string {
	label := strings.ToUpper(string(level))
	var c lipgloss.Color
	switch level {
	case domain.RiskCaution:
		c = colorCaution
	case domain.RiskDangerous:
		c = colorDangerous
	case domain.RiskBlocked:
		c = colorBlocked
	default:
		c = colorSafe
	}
	return r.style(lipgloss.NewStyle().Foreground(c).Bold(true), "["+label+"]")
}

func (r *Renderer) muted(text string) string {
	return r.style(lipgloss.NewStyle().Foreground(colorMuted), text)
}

// Explanation renders provider prose as markdown, or raw text without a TTY.
func (r *Renderer) Explanation(out io.Writer, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(text); err == nil {
			fmt.Fprint(out, rendered)
			return
		}
	}
	fmt.Fprintln(out, text)
}

// Decision prints each segment's verdict and the overall action.
func (r *Renderer) Decision(out io.Writer, decision domain.ExecutionDecision) {
	for _, seg := range decision.Segments {
		prefix := "  "
		if op := seg.Segment.Operator.Symbol(); op != "" {
			prefix = fmt.Sprintf("%-2s", op)
		}
		fmt.Fprintf(out, "%s %s %s\n", prefix, r.Badge(seg.Verdict.Level), seg.Segment.Text)
		if seg.Verdict.Level != domain.RiskSafe && seg.Verdict.Reason != "" {
			fmt.Fprintf(out, "      %s\n", r.muted(seg.Verdict.Reason+" ("+seg.Verdict.MatchedRule+")"))
		}
	}

	switch {
	case decision.Preview:
		fmt.Fprintln(out, "Suggest-only mode: the command was not run.")
	case decision.Action == domain.ActionBlock:
		fmt.Fprintf(out, "%s %s\n", r.Badge(domain.RiskBlocked), decision.Reason())
	case decision.Action == domain.ActionConfirm:
		fmt.Fprintf(out, "Confirmation required: %s\n", decision.Reason())
	}
}

// Response prints a full query result: candidate, verdicts and any output.
func (r *Renderer) Response(out io.Writer, resp domain.QueryResponse) {
	if resp.Candidate.Text == "" {
		return
	}
	fmt.Fprintf(out, "%s %s\n", r.muted(string(resp.Candidate.Dialect)+" $"), resp.Candidate.Text)
	r.Explanation(out, resp.Candidate.Explanation)
	if !resp.Decided {
		return
	}
	r.Decision(out, resp.Decision)

	if resp.Outcome == nil {
		return
	}
	if resp.Outcome.Declined {
		fmt.Fprintln(out, "Declined; nothing was run.")
	}
	if resp.Outcome.Stdout != "" {
		fmt.Fprint(out, ensureNewline(resp.Outcome.Stdout))
	}
	if resp.Outcome.Stderr != "" {
		fmt.Fprint(out, r.muted(ensureNewline(resp.Outcome.Stderr)))
	}
	for _, seg := range resp.Outcome.Segments {
		if seg.Err != nil {
			fmt.Fprintf(out, "segment %d failed to start: %v\n", seg.Index+1, seg.Err)
		}
	}
}

// HealthReport prints doctor checks.
func (r *Renderer) HealthReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		status := strings.ToUpper(string(check.Status))
		switch check.Status {
		case domain.HealthOK:
			status = r.style(lipgloss.NewStyle().Foreground(colorSafe), status)
		case domain.HealthWarn:
			status = r.style(lipgloss.NewStyle().Foreground(colorCaution), status)
		default:
			status = r.style(lipgloss.NewStyle().Foreground(colorBlocked), status)
		}
		fmt.Fprintf(out, "[%s] %s - %s\n", status, check.Name, check.Details)
	}
}

// History prints one line per record with a relative timestamp.
func (r *Renderer) History(out io.Writer, records []domain.HistoryRecord) {
	now := r.now()
	for _, rec := range records {
		when := humanize.RelTime(rec.Timestamp, now, "ago", "from now")
		state := string(rec.Action)
		if rec.Executed {
			state = fmt.Sprintf("exit %d", rec.ExitCode)
		}
		fmt.Fprintf(out, "%-16s %s %-9s %s %s\n",
			when,
			r.Badge(riskOrSafe(rec.RiskLevel)),
			state,
			rec.Command,
			r.muted("# "+rec.Prompt))
	}
}

func riskOrSafe(level domain.RiskLevel) domain.RiskLevel {
	if level == "" {
		return domain.RiskSafe
	}
	return level
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
