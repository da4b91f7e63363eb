package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/cli/helpers"
	"github.com/doeshing/aiterm/internal/ports"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(env *Env) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect invocation history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(env),
		newHistorySearchCommand(env),
		newHistoryClearCommand(env),
		newHistoryStatsCommand(env),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.OutOrStdout(), env, limit, "")
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

// newHistorySearchCommand creates the 'history search' subcommand
func newHistorySearchCommand(env *Env) *cobra.Command {
	var query string
	var searchLimit int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search history for a keyword",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return errors.New(ErrQueryRequired)
			}
			return listHistoryEntries(cmd.OutOrStdout(), env, searchLimit, query)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search keyword (matches prompt or command)")
	cmd.Flags().IntVar(&searchLimit, "limit", domain.DefaultHistorySearchLimit, "Limit search results")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(env)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgHistoryCleared)
			return nil
		},
	}
}

// newHistoryStatsCommand creates the 'history stats' subcommand
func newHistoryStatsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show success rate, top commands and risk distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistoryStats(cmd.OutOrStdout(), env)
		},
	}
}

func historyStore(env *Env) (ports.HistoryRepository, error) {
	container, err := env.container()
	if err != nil {
		return nil, err
	}
	if container.HistoryStore == nil {
		return nil, errors.New(ErrHistoryStoreUnavailable)
	}
	return container.HistoryStore, nil
}

// listHistoryEntries prints recent entries, optionally filtered
func listHistoryEntries(out io.Writer, env *Env, limit int, query string) error {
	store, err := historyStore(env)
	if err != nil {
		return err
	}

	records, err := store.Records(limit, query)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	env.Renderer.History(out, records)
	return nil
}

// showHistoryStats displays success rate and top commands
func showHistoryStats(out io.Writer, env *Env) error {
	store, err := historyStore(env)
	if err != nil {
		return err
	}

	records, err := store.Records(MaxHistoryAnalysisRecords, "")
	if err != nil {
		return fmt.Errorf("failed to retrieve history for analysis: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	displayHistoryStatistics(out, env, helpers.AnalyzeHistory(records))
	return nil
}

// displayHistoryStatistics displays formatted history statistics
func displayHistoryStatistics(out io.Writer, env *Env, stats helpers.HistoryStatistics) {
	fmt.Fprintf(out, "Entries analyzed: %d\nExecuted: %d\nDeclined: %d\nBlocked: %d\nSuccess rate: %.1f%%\n",
		stats.Total,
		stats.Executed,
		stats.Declined,
		stats.Blocked,
		helpers.CalculateSuccessRate(stats.Successful, stats.Executed))

	fmt.Fprintln(out, "Top commands:")
	for _, stat := range helpers.CalculateTopCommands(stats.Frequency, TopCommandsShown) {
		fmt.Fprintf(out, "  %s (%d)\n", stat.Command, stat.Count)
	}

	fmt.Fprintln(out, "Risk distribution:")
	for _, level := range []domain.RiskLevel{domain.RiskSafe, domain.RiskCaution, domain.RiskDangerous, domain.RiskBlocked} {
		if count := stats.ByLevel[level]; count > 0 {
			fmt.Fprintf(out, "  %s %d\n", env.Renderer.Badge(level), count)
		}
	}

	if len(stats.ByRule) > 0 {
		fmt.Fprintln(out, "Matched rules:")
		for _, stat := range helpers.CalculateTopCommands(stats.ByRule, 0) {
			fmt.Fprintf(out, "  %s (%d)\n", stat.Command, stat.Count)
		}
	}
}

