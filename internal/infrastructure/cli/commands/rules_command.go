package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/security"
	"github.com/doeshing/aiterm/internal/pkg/filesystem"
)

// NewRulesCommand creates the rules command with all subcommands
func NewRulesCommand(env *Env) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the risk rule table",
	}

	rulesCmd.AddCommand(
		newRulesListCommand(env),
		newRulesValidateCommand(env),
		newRulesPathCommand(env),
	)

	return rulesCmd
}

// newRulesListCommand creates the 'rules list' subcommand
func newRulesListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.container()
			if err != nil {
				return err
			}
			listRules(cmd.OutOrStdout(), env, container.Rules)
			return nil
		},
	}
}

// newRulesValidateCommand creates the 'rules validate' subcommand
func newRulesValidateCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:         "validate [file]",
		Short:       "Validate a rule table file (defaults to the configured one)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{AnnotationSkipContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := configLoader(env).Load(cmd.Context())
				if err != nil {
					return err
				}
				path = cfg.Security.RulesFile
				if _, err := os.Stat(filesystem.ExpandPath(path)); errors.Is(err, fs.ErrNotExist) {
					// a configured table that does not exist yet means the defaults
					path = ""
				}
			}
			return validateRules(cmd.OutOrStdout(), path)
		},
	}
}

// newRulesPathCommand creates the 'rules path' subcommand
func newRulesPathCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the rule table in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.container()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.Rules.Source())
			return nil
		},
	}
}

// listRules prints one line per rule, most severe first
func listRules(out io.Writer, env *Env, table *security.RuleTable) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, rule := range table.Rules() {
		scope := rule.Intent
		if len(rule.Programs) > 0 {
			scope += " [" + strings.Join(rule.Programs, ",") + "]"
		}
		if len(rule.Modifiers) > 0 {
			scope += " +" + strings.Join(rule.Modifiers, ",+")
		}
		if len(rule.Targets) > 0 {
			scope += " @" + strings.Join(rule.Targets, ",@")
		}
		badge := strings.ToUpper(rule.Level)
		if level, err := domain.ParseRiskLevel(rule.Level); err == nil {
			badge = env.Renderer.Badge(level)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", badge, rule.ID, scope)
	}
	w.Flush()
	fmt.Fprintf(out, "%d rules from %s\n", table.Len(), table.Source())
}

// validateRules loads the file and reports every problem found
func validateRules(out io.Writer, path string) error {
	path = filesystem.ExpandPath(path)
	if path == "" {
		table, err := security.DefaultRuleTable()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d rules OK\n", table.Source(), table.Len())
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rule table: %w", err)
	}
	table, err := security.ParseRuleTable(data, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d rules OK\n", table.Source(), table.Len())
	return nil
}
