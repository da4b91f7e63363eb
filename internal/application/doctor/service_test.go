package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
	infraconfig "github.com/doeshing/aiterm/internal/infrastructure/config"
)

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type stubRules struct{}

func (stubRules) Source() string { return "embedded defaults" }
func (stubRules) Len() int       { return 42 }

type stubPolicy struct {
	action domain.Action
	err    error
}

func (s stubPolicy) Evaluate(domain.CandidateCommand, domain.RunModeConfig) (domain.ExecutionDecision, error) {
	return domain.ExecutionDecision{Action: s.action}, s.err
}

type stubDetector struct{ env domain.EnvironmentInfo }

func (s stubDetector) Detect(context.Context) (domain.EnvironmentInfo, error) { return s.env, nil }

type stubShells struct{ found map[domain.ShellDialect]string }

func (s stubShells) Executable(d domain.ShellDialect) (string, error) {
	if path, ok := s.found[d]; ok {
		return path, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func checkNamed(t *testing.T, report domain.HealthReport, name string) domain.HealthCheck {
	t.Helper()
	for _, check := range report.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("no %q check in %+v", name, report.Checks)
	return domain.HealthCheck{}
}

func newService(cfg domain.Config) *Service {
	return &Service{
		ConfigProvider: stubConfigProvider{cfg: cfg},
		Rules:          stubRules{},
		Policy:         stubPolicy{action: domain.ActionExecute},
		Detector:       stubDetector{env: domain.EnvironmentInfo{Dialect: domain.DialectZsh, OS: "darwin", PythonEnv: domain.PythonEnvConda, PythonEnvName: "ml"}},
		Shells:         stubShells{found: map[domain.ShellDialect]string{domain.DialectZsh: "/bin/zsh"}},
	}
}

func TestDoctorHealthyDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "x")
	t.Setenv("OPENAI_API_KEY", "x")
	t.Setenv("GEMINI_API_KEY", "x")

	report, err := newService(infraconfig.Default()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report.Worst() != domain.HealthOK {
		t.Fatalf("expected all ok, got %+v", report.Checks)
	}
	if env := checkNamed(t, report, "Environment"); !strings.Contains(env.Details, "conda ml") {
		t.Fatalf("environment details %q", env.Details)
	}
	if rules := checkNamed(t, report, "Rule table"); !strings.Contains(rules.Details, "42 rules") {
		t.Fatalf("rule details %q", rules.Details)
	}
}

func TestDoctorReportsProblems(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := infraconfig.Default()
	cfg.Execution.Shell = "fish"

	svc := newService(cfg)
	svc.Policy = stubPolicy{action: domain.ActionConfirm}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := checkNamed(t, report, "Shell"); got.Status != domain.HealthError {
		t.Fatalf("missing fish should fail, got %+v", got)
	}
	if got := checkNamed(t, report, "Rule table"); got.Status != domain.HealthWarn {
		t.Fatalf("ls needing confirmation should warn, got %+v", got)
	}
	if got := checkNamed(t, report, "API keys"); got.Status != domain.HealthWarn || !strings.Contains(got.Details, "claude-sonnet") {
		t.Fatalf("missing key should warn, got %+v", got)
	}
	if report.Worst() != domain.HealthError {
		t.Fatalf("worst %s", report.Worst())
	}
}

func TestDoctorConfigLoadFailure(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfigProvider{err: errors.New("yaml: line 3")}}
	report, err := svc.Run(context.Background())
	if err == nil || report.Worst() != domain.HealthError {
		t.Fatalf("expected failure, got %+v (%v)", report, err)
	}
}

func TestDoctorWarnsWhenHistoryDisabled(t *testing.T) {
	cfg := infraconfig.Default()
	cfg.History.Enabled = false

	report, err := newService(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := checkNamed(t, report, "History"); got.Status != domain.HealthWarn || got.Details != "disabled in config" {
		t.Fatalf("disabled history should warn, got %+v", got)
	}
}
