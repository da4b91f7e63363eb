package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	configapp "github.com/doeshing/aiterm/internal/application/config"
	configinfra "github.com/doeshing/aiterm/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with all subcommands. These
// work without the application container so a broken config can be inspected.
func NewConfigCommand(env *Env) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect aiterm configuration",
		Annotations: map[string]string{AnnotationSkipContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), env)
		},
	}

	configCmd.AddCommand(
		newConfigShowCommand(env),
		newConfigPathCommand(env),
		newConfigValidateCommand(env),
		newConfigDiffCommand(env),
	)

	return configCmd
}

// newConfigShowCommand creates the 'config show' subcommand
func newConfigShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), env)
		},
	}
}

// newConfigPathCommand creates the 'config path' subcommand
func newConfigPathCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configLoader(env).Path())
			return nil
		},
	}
}

// newConfigValidateCommand creates the 'config validate' subcommand
func newConfigValidateCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := configLoader(env)
			cfg, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := configapp.Validate(cfg); err != nil {
				return fmt.Errorf("%s: %w", loader.Path(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
			return nil
		},
	}
}

// newConfigDiffCommand creates the 'config diff' subcommand
func newConfigDiffCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show differences from the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigurationDiff(cmd.Context(), cmd.OutOrStdout(), env)
		},
	}
}

func configLoader(env *Env) *configinfra.FileLoader {
	path := ""
	if env != nil && env.Flags != nil {
		path = env.Flags.ConfigPath
	}
	return configinfra.NewFileLoader(path)
}

// showConfiguration prints the effective configuration as YAML
func showConfiguration(ctx context.Context, out io.Writer, env *Env) error {
	cfg, err := configLoader(env).Load(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

// showConfigurationDiff compares the loaded config against the embedded defaults
func showConfigurationDiff(ctx context.Context, out io.Writer, env *Env) error {
	cfg, err := configLoader(env).Load(ctx)
	if err != nil {
		return err
	}
	diff := cmp.Diff(configinfra.Default(), cfg)
	if diff == "" {
		fmt.Fprintln(out, MsgNoDifferencesFromDefault)
		return nil
	}
	fmt.Fprintln(out, diff)
	return nil
}
