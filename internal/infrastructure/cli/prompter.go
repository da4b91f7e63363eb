package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/cli/helpers"
	"github.com/doeshing/aiterm/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	renderer    *helpers.Renderer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio. A stdin that is not a
// terminal makes every confirmation a refusal.
func NewPrompter(in io.Reader, out io.Writer, renderer *helpers.Renderer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if renderer == nil {
		renderer = helpers.NewRenderer(out)
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		renderer:    renderer,
		interactive: isTerminalReader(in),
	}
}

// NewInteractivePrompter skips the terminal check; used when input is scripted.
func NewInteractivePrompter(in io.Reader, out io.Writer, renderer *helpers.Renderer) *Prompter {
	p := NewPrompter(in, out, renderer)
	p.interactive = true
	return p
}

func isTerminalReader(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Confirm shows the decision and asks for y/N.
func (p *Prompter) Confirm(ctx context.Context, decision domain.ExecutionDecision) (bool, error) {
	if !p.interactive {
		fmt.Fprintln(p.out, "Confirmation required but input is not a terminal; declining.")
		return false, nil
	}

	fmt.Fprintf(p.out, "\n%s %s\n", p.renderer.Badge(decision.MaxLevel()), decision.Command)
	if reason := decision.Reason(); reason != "" {
		fmt.Fprintf(p.out, " - %s\n", reason)
	}
	fmt.Fprint(p.out, "Continue? [y/N]: ")

	line, err := helpers.ReadLine(ctx, p.in)
	if err != nil {
		fmt.Fprintln(p.out)
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	return helpers.IsAffirmative(line), nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
