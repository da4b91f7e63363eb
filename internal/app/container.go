package app

import (
	"context"
	"fmt"

	appconfig "github.com/doeshing/aiterm/internal/application/config"
	"github.com/doeshing/aiterm/internal/application/doctor"
	"github.com/doeshing/aiterm/internal/application/policy"
	"github.com/doeshing/aiterm/internal/application/query"
	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/ai"
	"github.com/doeshing/aiterm/internal/infrastructure/cache"
	"github.com/doeshing/aiterm/internal/infrastructure/config"
	"github.com/doeshing/aiterm/internal/infrastructure/dialect"
	"github.com/doeshing/aiterm/internal/infrastructure/environment"
	"github.com/doeshing/aiterm/internal/infrastructure/executor"
	"github.com/doeshing/aiterm/internal/infrastructure/history"
	"github.com/doeshing/aiterm/internal/infrastructure/security"
	"github.com/doeshing/aiterm/internal/infrastructure/tokenizer"
	"github.com/doeshing/aiterm/internal/pkg/filesystem"
	"github.com/doeshing/aiterm/internal/pkg/logger"
	"github.com/doeshing/aiterm/internal/ports"
)

// Options are the process-level inputs to the dependency graph.
type Options struct {
	ConfigPath string
	Verbose    bool
	// Prompter answers Confirm decisions; nil declines every one.
	Prompter ports.ConfirmationPrompter
}

// Container wires up application services with infrastructure adapters.
// Everything in it is built once and read-only afterwards.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Rules          *security.RuleTable
	RulesPath      string
	Policy         *policy.Engine
	QueryService   *query.Service
	DoctorService  *doctor.Service
	HistoryStore   ports.HistoryRepository
	CacheStore     *cache.FileCache
	Logger         ports.Logger

	closers []func() error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	log := logger.NewStd(opts.Verbose)

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgLoader.Path(), err)
	}

	rulesPath := filesystem.ExpandPath(cfg.Security.RulesFile)
	rules, err := security.LoadRuleTable(rulesPath)
	if err != nil {
		return nil, err
	}
	log.Debug("rule table loaded", map[string]interface{}{"source": rules.Source(), "rules": rules.Len()})

	tok := tokenizer.New()
	mapper := dialect.NewMapper(rules.TargetClasses())
	engine := policy.NewEngine(tok, mapper, security.NewClassifier(rules, tok, mapper))

	configured, _ := cfg.ExecutionDialect()
	detector := environment.NewDetector(configured)
	launcher := executor.NewLocalLauncher(cfg.ExecutionTimeout())
	runner := executor.NewAdapter(launcher, opts.Prompter, log, cfg.ExecutionTimeout(), "")

	c := &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Rules:          rules,
		RulesPath:      rulesPath,
		Policy:         engine,
		Logger:         log,
	}
	c.HistoryStore = c.openHistory(cfg, log)

	factory := ai.NewFactory(cfg.Preferences.OfflineFallback, log)
	if cfg.Cache.Enabled {
		c.CacheStore = cache.NewFileCache(filesystem.AppDir("cache", "responses"), cfg.GetCacheTTL(), cfg.GetCacheMaxEntries())
		factory.WithCache(c.CacheStore)
	}

	c.QueryService = &query.Service{
		ConfigProvider: cfgLoader,
		Detector:       detector,
		Generators:     factory,
		Policy:         engine,
		Runner:         runner,
		History:        c.HistoryStore,
		Logger:         log,
	}
	c.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		Rules:          rules,
		Policy:         engine,
		Detector:       detector,
		Shells:         launcher,
		History:        c.HistoryStore,
	}
	return c, nil
}

// openHistory prefers SQLite and falls back to a jsonl file. Nothing is
// opened or created when history is disabled.
func (c *Container) openHistory(cfg domain.Config, log ports.Logger) ports.HistoryRepository {
	if !cfg.History.Enabled {
		return nil
	}
	var store ports.HistoryRepository
	sqlite, err := history.NewSQLiteStore(filesystem.AppDir("history.db"))
	if err != nil {
		log.Warn("sqlite history unavailable, using jsonl", map[string]interface{}{"error": err.Error()})
		store = history.NewFileStore(filesystem.AppDir("history", "history.jsonl"))
	} else {
		c.closers = append(c.closers, sqlite.Close)
		store = sqlite
	}

	if err := store.PruneOlderThan(cfg.GetHistoryRetentionDays()); err != nil {
		log.Warn("history prune failed", map[string]interface{}{"error": err.Error()})
	}
	return store
}

// Close releases the history database.
func (c *Container) Close() error {
	var first error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
