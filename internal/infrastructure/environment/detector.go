// Package environment detects the session's shell dialect and Python
// environment manager.
package environment

import (
	"context"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// Detector implements ports.EnvironmentDetector from process environment.
type Detector struct {
	override domain.ShellDialect
	getenv   func(string) string
	goos     string
	isAdmin  func(context.Context) bool
}

var _ ports.EnvironmentDetector = (*Detector)(nil)

// NewDetector builds a detector. A non-empty override wins over detection.
func NewDetector(override domain.ShellDialect) *Detector {
	return &Detector{
		override: override,
		getenv:   os.Getenv,
		goos:     runtime.GOOS,
		isAdmin:  detectAdmin,
	}
}

// Detect gathers environment data.
func (d *Detector) Detect(ctx context.Context) (domain.EnvironmentInfo, error) {
	wd, _ := os.Getwd()
	kind, name := d.pythonEnv()

	dialect := d.override
	if dialect == "" {
		dialect = d.dialect()
	}

	return domain.EnvironmentInfo{
		Dialect:       dialect,
		PythonEnv:     kind,
		PythonEnvName: name,
		OS:            d.goos,
		WorkingDir:    wd,
		User:          d.user(),
		IsAdmin:       d.isAdmin(ctx),
	}, nil
}

func (d *Detector) dialect() domain.ShellDialect {
	if d.goos == "windows" {
		// cmd.exe exports PROMPT; PowerShell does not.
		if prompt := d.getenv("PROMPT"); prompt != "" && !strings.Contains(prompt, "PS") {
			return domain.DialectCMD
		}
		if d.getenv("PSModulePath") != "" {
			return domain.DialectPowerShell
		}
		return domain.DialectCMD
	}

	shell := strings.ToLower(filepath.Base(d.getenv("SHELL")))
	if dialect, err := domain.ParseDialect(shell); err == nil {
		return dialect
	}
	switch {
	case strings.Contains(shell, "zsh"):
		return domain.DialectZsh
	case strings.Contains(shell, "fish"):
		return domain.DialectFish
	case strings.Contains(shell, "pwsh"):
		return domain.DialectPowerShell
	default:
		return domain.DialectBash
	}
}

// pythonEnv checks managers in order: venv, conda, poetry, pipenv.
func (d *Detector) pythonEnv() (domain.PythonEnvKind, string) {
	if venv := d.getenv("VIRTUAL_ENV"); venv != "" {
		return domain.PythonEnvVenv, filepath.Base(venv)
	}
	if conda := d.getenv("CONDA_DEFAULT_ENV"); conda != "" {
		return domain.PythonEnvConda, conda
	}
	if d.getenv("POETRY_ACTIVE") != "" {
		return domain.PythonEnvPoetry, "poetry"
	}
	if d.getenv("PIPENV_ACTIVE") != "" {
		return domain.PythonEnvPipenv, "pipenv"
	}
	return domain.PythonEnvNone, ""
}

func (d *Detector) user() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if name := d.getenv(key); name != "" {
			return name
		}
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

func detectAdmin(ctx context.Context) bool {
	if runtime.GOOS != "windows" {
		return os.Geteuid() == 0
	}
	// "net session" only succeeds from an elevated prompt.
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return exec.CommandContext(cctx, "net", "session").Run() == nil
}
