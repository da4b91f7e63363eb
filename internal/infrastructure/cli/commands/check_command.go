package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aiterm/internal/domain"
)

// NewCheckCommand classifies literal command text. Nothing is executed.
func NewCheckCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "check <command>",
		Short: "Classify a command without running it",
		Example: `  aiterm check 'rm -rf ./build'
  aiterm check --shell powershell 'Remove-Item -Recurse -Force C:\temp'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			text := strings.Join(args, " ")
			decision, err := container.QueryService.Assess(cmd.Context(), text, dialect, mode)
			if err != nil {
				return fmt.Errorf("evaluate command: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s $ %s\n", decision.Dialect, text)
			env.Renderer.Decision(out, decision)
			if decision.Action == domain.ActionExecute {
				fmt.Fprintln(out, "Would run without confirmation.")
				return nil
			}
			if decision.Action == domain.ActionBlock && !decision.Preview {
				return domain.ErrCommandBlocked
			}
			return nil
		},
	}
}

