package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// ExitTimeout is reported when a launch exceeds its timeout.
const ExitTimeout = 124

// LocalLauncher runs one segment through the host shell of its dialect.
type LocalLauncher struct {
	timeout  time.Duration
	lookPath func(string) (string, error)
}

var _ ports.ProcessLauncher = (*LocalLauncher)(nil)

// NewLocalLauncher builds a launcher; a non-positive timeout uses the default.
func NewLocalLauncher(timeout time.Duration) *LocalLauncher {
	if timeout <= 0 {
		timeout = domain.DefaultExecutionTimeout
	}
	return &LocalLauncher{timeout: timeout, lookPath: exec.LookPath}
}

// Launch starts the process and waits. A nonzero exit is a result, not an
// error; only failing to start the process is.
func (l *LocalLauncher) Launch(ctx context.Context, req ports.LaunchRequest) (ports.LaunchResult, error) {
	name, args, err := l.argv(req.Dialect, req.Text)
	if err != nil {
		return ports.LaunchResult{}, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = l.timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = req.Dir
	cmd.Stdin = req.Stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err = cmd.Run()
	result := ports.LaunchResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.ExitCode = ExitTimeout
		result.Stderr += fmt.Sprintf("timed out after %s\n", timeout)
		return result, nil
	case ctx.Err() != nil:
		result.ExitCode = domain.ExitInterrupted
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	default:
		return result, fmt.Errorf("launch %s: %w", name, err)
	}
}

// argv returns the interpreter invocation for a dialect.
func (l *LocalLauncher) argv(dialect domain.ShellDialect, text string) (string, []string, error) {
	switch dialect {
	case domain.DialectBash, "":
		return "bash", []string{"-c", text}, nil
	case domain.DialectZsh:
		return "zsh", []string{"-c", text}, nil
	case domain.DialectFish:
		return "fish", []string{"-c", text}, nil
	case domain.DialectPowerShell:
		name := "pwsh"
		if _, err := l.lookPath(name); err != nil {
			name = "powershell.exe"
		}
		return name, []string{"-NoProfile", "-Command", text}, nil
	case domain.DialectCMD:
		return "cmd.exe", []string{"/c", text}, nil
	default:
		return "", nil, fmt.Errorf("no interpreter for dialect %q", dialect)
	}
}

// Executable resolves the interpreter a dialect would launch on this host.
func (l *LocalLauncher) Executable(dialect domain.ShellDialect) (string, error) {
	name, _, err := l.argv(dialect, "")
	if err != nil {
		return "", err
	}
	return l.lookPath(name)
}
