package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/aiterm/internal/app"
	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/cli/helpers"
)

// GlobalFlags are the persistent flags shared by every subcommand.
type GlobalFlags struct {
	SuggestOnly bool
	Strict      bool
	Strictness  string
	Provider    string
	Shell       string
	ConfigPath  string
	Timeout     time.Duration
	Verbose     bool
}

// RunMode layers the flags over the config defaults. --strict wins over
// --strictness.
func (f GlobalFlags) RunMode(cfg domain.Config) (domain.RunModeConfig, error) {
	mode := cfg.RunModeDefaults()
	if f.SuggestOnly {
		mode.SuggestOnly = true
	}
	if f.Strictness != "" {
		strictness, err := domain.ParseStrictness(f.Strictness)
		if err != nil {
			return domain.RunModeConfig{}, err
		}
		mode.Strictness = strictness
	}
	if f.Strict {
		mode.Strictness = domain.StrictnessStrict
	}
	return mode, nil
}

// Dialect parses --shell; empty or "auto" means no override.
func (f GlobalFlags) Dialect() (domain.ShellDialect, error) {
	if f.Shell == "" || f.Shell == "auto" {
		return "", nil
	}
	dialect, err := domain.ParseDialect(f.Shell)
	if err != nil {
		return "", fmt.Errorf("--shell: %w", err)
	}
	return dialect, nil
}

// Env is handed to every subcommand. The container is filled in after flag
// parsing, so commands must read it inside RunE.
type Env struct {
	Flags     *GlobalFlags
	Container *app.Container
	Renderer  *helpers.Renderer
}

// container returns the built container or an error when startup skipped it.
func (e *Env) container() (*app.Container, error) {
	if e == nil || e.Container == nil {
		return nil, errors.New(ErrContainerUnavailable)
	}
	return e.Container, nil
}
