// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The safety core (tokenizer, dialect mapper, classifier, policy engine) depends
// only on these contracts. Generators, the process launcher, the prompter and the
// history store are adapters in the infrastructure layer.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Generator, ProcessLauncher)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"io"
	"time"

	"github.com/doeshing/aiterm/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// EnvironmentDetector supplies the dialect and Python environment for a session.
type EnvironmentDetector interface {
	Detect(context.Context) (domain.EnvironmentInfo, error)
}

// GenerationRequest is everything a generator may use to build its prompt.
type GenerationRequest struct {
	Prompt string
	Env    domain.EnvironmentInfo
}

// Generator turns natural language into a candidate command for one dialect.
// Failures are reported as *domain.GenerationUnavailableError.
type Generator interface {
	Name() string
	Generate(context.Context, GenerationRequest) (domain.CandidateCommand, error)
}

// GeneratorFactory builds a generator for a configured model.
type GeneratorFactory interface {
	ForModel(domain.ModelDefinition) (Generator, error)
}

// Tokenizer splits candidate text into segments.
type Tokenizer interface {
	Tokenize(text string, dialect domain.ShellDialect) ([]domain.CommandSegment, error)
}

// Canonicalizer maps segments to dialect-agnostic intent tokens.
type Canonicalizer interface {
	CanonicalizeAll([]domain.CommandSegment) []domain.IntentTokens
}

// Classifier assigns a verdict to canonicalized segments.
type Classifier interface {
	Classify(domain.IntentTokens) domain.RiskVerdict
}

// PolicyEvaluator produces the single decision for a candidate.
type PolicyEvaluator interface {
	Evaluate(domain.CandidateCommand, domain.RunModeConfig) (domain.ExecutionDecision, error)
}

// DecisionRunner realizes a decision (prompting, launching, or suppressing).
type DecisionRunner interface {
	Run(context.Context, domain.ExecutionDecision) (domain.ExecutionOutcome, error)
}

// LaunchRequest describes one process launch for one segment.
type LaunchRequest struct {
	Dialect domain.ShellDialect
	Text    string
	Dir     string
	Stdin   io.Reader
	Timeout time.Duration
}

// LaunchResult is the captured result of one launch.
type LaunchResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ProcessLauncher starts one process and waits for it.
// A non-nil error means the process could not be started at all.
type ProcessLauncher interface {
	Launch(context.Context, LaunchRequest) (LaunchResult, error)
}

// ConfirmationPrompter asks the user to affirm a Confirm decision.
// Anything other than (true, nil) must be treated as a refusal.
type ConfirmationPrompter interface {
	Confirm(context.Context, domain.ExecutionDecision) (bool, error)
}

// HistoryRepository persists invocation records.
type HistoryRepository interface {
	Save(domain.HistoryRecord) error
	Records(limit int, search string) ([]domain.HistoryRecord, error)
	Clear() error
	PruneOlderThan(days int) error
	Path() string
}

// CacheStore keeps generated candidates keyed by request.
type CacheStore interface {
	Get(key string) (domain.CacheEntry, bool, error)
	Set(domain.CacheEntry) error
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
