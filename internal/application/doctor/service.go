package doctor

import (
	"context"
	"fmt"
	"os"

	appconfig "github.com/doeshing/aiterm/internal/application/config"
	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// RuleTable is the part of the loaded rule table the report describes.
type RuleTable interface {
	Source() string
	Len() int
}

// ShellLocator finds the interpreter for a dialect.
type ShellLocator interface {
	Executable(domain.ShellDialect) (string, error)
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Rules          RuleTable
	Policy         ports.PolicyEvaluator
	Detector       ports.EnvironmentDetector
	Shells         ShellLocator
	History        ports.HistoryRepository
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format %s, %d models", cfg.ConfigFormatVersion, len(cfg.Models))))
	}

	checks = append(checks, s.rulesCheck())
	checks = append(checks, s.environmentChecks(ctx, cfg)...)

	switch {
	case !cfg.History.Enabled:
		checks = append(checks, warn("History", "disabled in config"))
	case s.History != nil:
		checks = append(checks, ok("History", s.History.Path()))
	}

	checks = append(checks, apiCheck(cfg.Models))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) rulesCheck() domain.HealthCheck {
	if s.Rules == nil || s.Policy == nil {
		return warn("Rule table", "policy engine not initialized")
	}
	// a trivially safe command must still be allowed
	decision, err := s.Policy.Evaluate(domain.CandidateCommand{Text: "ls", Dialect: domain.DialectBash}, domain.RunModeConfig{})
	if err != nil {
		return fail("Rule table", err.Error())
	}
	if decision.Action != domain.ActionExecute {
		return warn("Rule table", fmt.Sprintf("`ls` evaluates to %s; check custom rules", decision.Action))
	}
	return ok("Rule table", fmt.Sprintf("%d rules from %s", s.Rules.Len(), s.Rules.Source()))
}

func (s *Service) environmentChecks(ctx context.Context, cfg domain.Config) []domain.HealthCheck {
	if s.Detector == nil {
		return nil
	}
	env, err := s.Detector.Detect(ctx)
	if err != nil {
		return []domain.HealthCheck{warn("Environment", err.Error())}
	}
	if configured, set := cfg.ExecutionDialect(); set {
		env.Dialect = configured
	}

	details := fmt.Sprintf("%s on %s", env.Dialect, env.OS)
	if env.InVirtualEnv() {
		details += fmt.Sprintf(", python %s %s", env.PythonEnv, env.PythonEnvName)
	}
	if env.IsAdmin {
		details += ", elevated"
	}
	checks := []domain.HealthCheck{ok("Environment", details)}

	if s.Shells != nil {
		if path, err := s.Shells.Executable(env.Dialect); err != nil {
			checks = append(checks, fail("Shell", fmt.Sprintf("%s interpreter not found: %v", env.Dialect, err)))
		} else {
			checks = append(checks, ok("Shell", path))
		}
	}
	return checks
}

func apiCheck(models []domain.ModelDefinition) domain.HealthCheck {
	var missing []string
	for _, model := range models {
		switch model.Provider {
		case domain.ProviderAnthropic:
			if envMissing(model.AuthEnvVar, "ANTHROPIC_API_KEY") {
				missing = append(missing, model.Name)
			}
		case domain.ProviderOpenAI:
			if envMissing(model.AuthEnvVar, "OPENAI_API_KEY") {
				missing = append(missing, model.Name)
			}
		case domain.ProviderHTTP:
			if model.AuthEnvVar != "" && envMissing(model.AuthEnvVar, "") {
				missing = append(missing, model.Name)
			}
		}
	}
	if len(missing) > 0 {
		return warn("API keys", fmt.Sprintf("missing for %v", missing))
	}
	return ok("API keys", "detected for configured providers")
}

func envMissing(primary, fallback string) bool {
	if primary != "" && os.Getenv(primary) != "" {
		return false
	}
	if fallback != "" && os.Getenv(fallback) != "" {
		return false
	}
	return true
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
