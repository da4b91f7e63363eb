package commands

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aiterm/internal/domain"
)

// NewRunCommand creates the run command; the root command delegates to it.
func NewRunCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "run [natural language]",
		Aliases: []string{"query"},
		Short:   "Generate a command from natural language and run it under the safety policy",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunQuery(cmd, env, args)
		},
	}
}

// RunQuery executes one natural-language request and renders the result.
func RunQuery(cmd *cobra.Command, env *Env, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return errors.New(ErrPromptRequired)
	}
	container, err := env.container()
	if err != nil {
		return err
	}

	mode, err := env.Flags.RunMode(container.Config)
	if err != nil {
		return err
	}
	dialect, err := env.Flags.Dialect()
	if err != nil {
		return err
	}

	resp, err := container.QueryService.Run(domain.QueryRequest{
		Context:         cmd.Context(),
		Prompt:          prompt,
		ModelOverride:   env.Flags.Provider,
		DialectOverride: dialect,
		RunMode:         mode,
		Timeout:         env.Flags.Timeout,
	})
	renderResponse(cmd.OutOrStdout(), env, resp)
	return err
}

func renderResponse(out io.Writer, env *Env, resp domain.QueryResponse) {
	if env.Renderer == nil {
		return
	}
	env.Renderer.Response(out, resp)
}
