// Package executor realizes execution decisions: it prompts, suppresses, or
// replays a chain segment by segment through a ProcessLauncher.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/pkg/filesystem"
	"github.com/doeshing/aiterm/internal/ports"
)

// Adapter implements ports.DecisionRunner.
type Adapter struct {
	launcher ports.ProcessLauncher
	prompter ports.ConfirmationPrompter
	logger   ports.Logger
	timeout  time.Duration
	dir      string
}

var _ ports.DecisionRunner = (*Adapter)(nil)

// NewAdapter wires an adapter. dir is the starting working directory; empty
// means the process working directory.
func NewAdapter(launcher ports.ProcessLauncher, prompter ports.ConfirmationPrompter, logger ports.Logger, timeout time.Duration, dir string) *Adapter {
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	return &Adapter{launcher: launcher, prompter: prompter, logger: logger, timeout: timeout, dir: dir}
}

// Run realizes a decision. Block never launches anything; Confirm launches
// only after an explicit affirmation; Execute replays the chain.
func (a *Adapter) Run(ctx context.Context, decision domain.ExecutionDecision) (domain.ExecutionOutcome, error) {
	switch decision.Action {
	case domain.ActionBlock:
		if decision.Preview {
			return domain.ExecutionOutcome{Preview: true}, nil
		}
		a.logger.Info("command blocked", map[string]interface{}{
			"level":  decision.MaxLevel(),
			"reason": decision.Reason(),
		})
		return domain.ExecutionOutcome{}, domain.ErrCommandBlocked
	case domain.ActionConfirm:
		ok, err := a.confirm(ctx, decision)
		if !ok {
			a.logger.Info("confirmation declined", map[string]interface{}{"level": decision.MaxLevel()})
			if err != nil {
				return domain.ExecutionOutcome{Declined: true}, fmt.Errorf("%w: %w", domain.ErrConfirmationDeclined, err)
			}
			return domain.ExecutionOutcome{Declined: true}, domain.ErrConfirmationDeclined
		}
	case domain.ActionExecute:
	default:
		return domain.ExecutionOutcome{}, fmt.Errorf("unknown action %q", decision.Action)
	}
	return a.replay(ctx, decision.Segments)
}

func (a *Adapter) confirm(ctx context.Context, decision domain.ExecutionDecision) (bool, error) {
	if a.prompter == nil {
		return false, nil
	}
	ok, err := a.prompter.Confirm(ctx, decision)
	if err != nil {
		return false, err
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return ok, nil
}

// replay runs pipelines left to right. Each pipeline is gated by the
// operator in front of it and the last exit code; inside a pipeline each
// segment's stdout feeds the next segment's stdin.
func (a *Adapter) replay(ctx context.Context, segments []domain.ClassifiedSegment) (domain.ExecutionOutcome, error) {
	outcome := domain.ExecutionOutcome{Executed: true}
	state := &replayState{dir: a.dir}
	start := time.Now()
	lastExit := 0

	for i := 0; i < len(segments); {
		end := pipelineEnd(segments, i)
		if err := ctx.Err(); err != nil {
			outcome.Duration = time.Since(start)
			outcome.ExitCode = domain.ExitInterrupted
			return outcome, err
		}

		if !shouldRun(segments[i].Segment.Operator, lastExit) {
			for _, seg := range segments[i:end] {
				outcome.Segments = append(outcome.Segments, domain.SegmentOutcome{Index: seg.Segment.Index, Skipped: true})
			}
			i = end
			continue
		}

		var stdin io.Reader
		var stdout string
		for _, seg := range segments[i:end] {
			result := a.runSegment(ctx, seg, state, stdin)
			outcome.Segments = append(outcome.Segments, result)
			outcome.Stderr += result.Stderr
			stdout = result.Stdout
			stdin = strings.NewReader(result.Stdout)
			lastExit = result.ExitCode
		}
		outcome.Stdout += stdout
		i = end
	}

	outcome.ExitCode = lastExit
	outcome.Duration = time.Since(start)
	if lastExit != 0 {
		return outcome, &domain.ExitStatusError{Code: lastExit}
	}
	return outcome, nil
}

func (a *Adapter) runSegment(ctx context.Context, seg domain.ClassifiedSegment, state *replayState, stdin io.Reader) domain.SegmentOutcome {
	out := domain.SegmentOutcome{Index: seg.Segment.Index, Ran: true}

	if seg.Intent.Intent == domain.IntentNavigate {
		if err := state.navigate(seg.Segment); err != nil {
			out.ExitCode = 1
			out.Stderr = err.Error() + "\n"
			out.Err = err
		}
		return out
	}

	result, err := a.launcher.Launch(ctx, ports.LaunchRequest{
		Dialect: seg.Segment.Dialect,
		Text:    seg.Segment.Text,
		Dir:     state.dir,
		Stdin:   stdin,
		Timeout: a.timeout,
	})
	out.Stdout = result.Stdout
	out.Stderr = result.Stderr
	out.Duration = result.Duration
	out.ExitCode = result.ExitCode
	if err != nil {
		a.logger.Warn("launch failed", map[string]interface{}{"segment": seg.Segment.Text, "error": err.Error()})
		out.Err = err
		out.ExitCode = domain.ExitLaunch
		if out.Stderr == "" {
			out.Stderr = err.Error() + "\n"
		}
	}
	return out
}

func pipelineEnd(segments []domain.ClassifiedSegment, start int) int {
	end := start + 1
	for end < len(segments) && segments[end].Segment.Operator == domain.OpPipe {
		end++
	}
	return end
}

func shouldRun(op domain.ChainOperator, lastExit int) bool {
	switch op {
	case domain.OpAnd:
		return lastExit == 0
	case domain.OpOr:
		return lastExit != 0
	default:
		return true
	}
}

// replayState is the working directory the adapter carries between
// launches, since separate processes cannot share cd.
type replayState struct {
	dir   string
	prev  string
	stack []string
}

var errNoDirStack = errors.New("popd: directory stack empty")

func (s *replayState) navigate(seg domain.CommandSegment) error {
	if len(seg.Words) == 0 {
		return nil
	}
	name := strings.ToLower(filepath.Base(seg.Words[0]))
	if name == "popd" {
		if len(s.stack) == 0 {
			return errNoDirStack
		}
		s.prev, s.dir = s.dir, s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		return nil
	}

	arg, ok := navigationArgument(seg.Words[1:], seg.Dialect)
	var target string
	switch {
	case !ok || arg == "~":
		target = filesystem.UserHomeDir()
	case arg == "-":
		if s.prev == "" {
			return errors.New("cd: no previous directory")
		}
		target = s.prev
	default:
		target = filesystem.ExpandPath(arg)
		if !filepath.IsAbs(target) {
			target = filepath.Join(s.dir, target)
		}
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: no such directory: %s", name, arg)
	}
	if name == "pushd" {
		s.stack = append(s.stack, s.dir)
	}
	s.prev, s.dir = s.dir, target
	return nil
}

// navigationArgument picks the directory operand, skipping switches such as
// cd -P, cd /d and Set-Location -Path.
func navigationArgument(args []string, dialect domain.ShellDialect) (string, bool) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-":
			return arg, true
		case dialect == domain.DialectPowerShell && strings.HasPrefix(arg, "-"):
			param := strings.ToLower(strings.TrimLeft(arg, "-"))
			if (param == "path" || param == "literalpath") && i+1 < len(args) {
				return args[i+1], true
			}
		case dialect == domain.DialectCMD && strings.HasPrefix(arg, "/") && len(arg) == 2:
		case dialect != domain.DialectCMD && dialect != domain.DialectPowerShell && strings.HasPrefix(arg, "-"):
		default:
			return arg, true
		}
	}
	return "", false
}
