package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/aiterm/internal/app"
	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/cli/commands"
	"github.com/doeshing/aiterm/internal/infrastructure/cli/helpers"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	In      io.Reader
	Out     io.Writer
}

// NewRootCmd wires the cobra root command. The container is built after flag
// parsing so --config and --verbose take effect. Execute also closes the
// container; running the returned command directly leaves that to exit.
func NewRootCmd(opts Options) *cobra.Command {
	root, _ := newRoot(opts)
	return root
}

func newRoot(opts Options) (*cobra.Command, *commands.Env) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	flags := &commands.GlobalFlags{Verbose: opts.Verbose}
	renderer := helpers.NewRenderer(out)
	env := &commands.Env{Flags: flags, Renderer: renderer}

	root := &cobra.Command{
		Use:   "aiterm [query]",
		Short: "aiterm - natural language to shell commands, with a safety policy",
		Long: `aiterm turns a request into a command for your shell, classifies every
segment of it against a rule table, and then runs it, asks first, or refuses.`,
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipContainer(cmd) {
				return nil
			}
			container, err := app.BuildContainer(cmd.Context(), app.Options{
				ConfigPath: flags.ConfigPath,
				Verbose:    flags.Verbose,
				Prompter:   NewPrompter(opts.In, out, renderer),
			})
			if err != nil {
				return err
			}
			env.Container = container
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return commands.RunQuery(cmd, env, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.BoolVarP(&flags.SuggestOnly, "suggest-only", "s", false, "Show the command and its verdicts but never run it")
	pf.BoolVar(&flags.Strict, "strict", false, "Require confirmation for caution-level commands too")
	pf.StringVar(&flags.Strictness, "strictness", "", "Strictness: lenient|strict (default from config)")
	pf.StringVar(&flags.Provider, "provider", "", "Model name from config to generate with")
	pf.StringVar(&flags.Shell, "shell", "", "Target shell: bash|zsh|fish|powershell|cmd|auto")
	pf.StringVar(&flags.ConfigPath, "config", "", "Config file path (default ~/.aiterm/config.yaml)")
	pf.DurationVar(&flags.Timeout, "timeout", 0, "Generation timeout (default from config)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")

	root.AddCommand(
		commands.NewRunCommand(env),
		commands.NewCheckCommand(env),
		commands.NewRulesCommand(env),
		commands.NewHistoryCommand(env),
		commands.NewCacheCommand(env),
		commands.NewDoctorCommand(env),
		commands.NewConfigCommand(env),
		commands.NewVersionCommand(),
	)
	return root, env
}

// skipContainer reports whether cmd or one of its parents opts out of the
// container. Help and completion never need it.
func skipContainer(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[commands.AnnotationSkipContainer] == "true" {
			return true
		}
		switch c.Name() {
		case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
			return true
		}
	}
	return false
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, opts Options, args []string) int {
	root, env := newRoot(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if env.Container != nil {
		// PostRun hooks are skipped on error, so close here
		if closeErr := env.Container.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	if err != nil && !isRefusal(err) {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return ExitCode(err)
}

// isRefusal reports whether err only means the policy or the user said no;
// the renderer has already explained it.
func isRefusal(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var exitErr *domain.ExitStatusError
	return errors.Is(err, domain.ErrCommandBlocked) ||
		errors.Is(err, domain.ErrConfirmationDeclined) ||
		errors.As(err, &exitErr)
}
