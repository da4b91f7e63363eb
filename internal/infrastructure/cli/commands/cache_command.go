package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/cache"
	"github.com/doeshing/aiterm/internal/infrastructure/cli/helpers"
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(env *Env) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the generation cache",
	}

	cacheCmd.AddCommand(
		newCacheListCommand(env),
		newCacheClearCommand(env),
		newCacheStatsCommand(env),
	)

	return cacheCmd
}

// newCacheListCommand creates the 'cache list' subcommand
func newCacheListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached commands, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCacheEntries(cmd.OutOrStdout(), env)
		},
	}
}

// newCacheClearCommand creates the 'cache clear' subcommand
func newCacheClearCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached command",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cacheStore(env)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgCacheCleared)
			return nil
		},
	}
}

// newCacheStatsCommand creates the 'cache stats' subcommand
func newCacheStatsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache settings, size and per-model counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCacheStats(cmd.OutOrStdout(), env)
		},
	}
}

func cacheStore(env *Env) (*cache.FileCache, error) {
	container, err := env.container()
	if err != nil {
		return nil, err
	}
	if container.CacheStore == nil {
		return nil, errors.New(ErrCacheDisabled)
	}
	return container.CacheStore, nil
}

// listCacheEntries lists all cache entries
func listCacheEntries(out io.Writer, env *Env) error {
	store, err := cacheStore(env)
	if err != nil {
		return err
	}

	entries, err := store.Entries()
	if err != nil {
		return fmt.Errorf("failed to retrieve cache entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoCachedResponses)
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(out, "%s | %s | %s $ %s\n",
			entry.CreatedAt.Format(domain.TimestampFormat),
			entry.Model,
			entry.Candidate.Dialect,
			entry.Candidate.Text)
	}
	return nil
}

// showCacheStats displays cache settings and per-model statistics
func showCacheStats(out io.Writer, env *Env) error {
	store, err := cacheStore(env)
	if err != nil {
		return err
	}

	entries, err := store.Entries()
	if err != nil {
		return fmt.Errorf("failed to retrieve cache entries: %w", err)
	}
	size, err := store.Size()
	if err != nil {
		return fmt.Errorf("failed to calculate cache size: %w", err)
	}

	fmt.Fprintf(out, "Cache directory: %s\nSize: %s\nTTL: %s\nMax entries: %d\nCurrent entries: %d\n",
		store.Dir(),
		humanize.Bytes(uint64(size)),
		store.TTL(),
		store.MaxEntries(),
		len(entries))

	if len(entries) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.Model]++
	}
	fmt.Fprintln(out, "Entries per model:")
	for _, stat := range helpers.CalculateTopCommands(counts, 0) {
		fmt.Fprintf(out, "  %s: %d\n", stat.Command, stat.Count)
	}
	return nil
}
