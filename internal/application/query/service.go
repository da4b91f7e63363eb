package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// RuleMalformed is recorded in history for candidates that could not be tokenized.
const RuleMalformed = "malformed"

// Service orchestrates the query lifecycle end-to-end.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Detector       ports.EnvironmentDetector
	Generators     ports.GeneratorFactory
	Policy         ports.PolicyEvaluator
	Runner         ports.DecisionRunner
	History        ports.HistoryRepository
	Logger         ports.Logger
}

// Run processes a single natural-language query: generate, evaluate, realize, record.
func (s *Service) Run(req domain.QueryRequest) (domain.QueryResponse, error) {
	if s.ConfigProvider == nil || s.Detector == nil || s.Generators == nil ||
		s.Policy == nil || s.Runner == nil || s.Logger == nil {
		return domain.QueryResponse{}, errors.New("query.Service dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("load config: %w", err)
	}

	env, err := s.environment(ctx, cfg, req.DialectOverride)
	if err != nil {
		return domain.QueryResponse{}, err
	}

	modelDef, err := pickModel(cfg, req.ModelOverride)
	if err != nil {
		return domain.QueryResponse{}, err
	}

	generator, err := s.Generators.ForModel(modelDef)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("provider init: %w", err)
	}

	s.Logger.Info("calling provider", map[string]interface{}{
		"provider": generator.Name(),
		"model":    modelDef.ModelID,
		"dialect":  env.Dialect,
	})

	candidate, err := s.generate(ctx, generator, req, cfg, env)
	if err != nil {
		return domain.QueryResponse{}, err
	}

	resp := domain.QueryResponse{
		ID:          uuid.NewString(),
		Prompt:      req.Prompt,
		Candidate:   candidate,
		Environment: env,
	}

	decision, err := s.Policy.Evaluate(candidate, req.RunMode)
	if err != nil {
		s.record(cfg, resp, generator.Name(), err)
		return resp, fmt.Errorf("evaluate command: %w", err)
	}
	resp.Decision = decision
	resp.Decided = true

	s.Logger.Debug("policy decision", map[string]interface{}{
		"action":  decision.Action,
		"level":   decision.MaxLevel(),
		"preview": decision.Preview,
	})

	outcome, runErr := s.Runner.Run(ctx, decision)
	resp.Outcome = &outcome
	s.record(cfg, resp, generator.Name(), nil)
	return resp, runErr
}

// Assess evaluates literal command text without generating or running
// anything. The dialect is resolved the same way Run resolves it.
func (s *Service) Assess(ctx context.Context, text string, dialectOverride domain.ShellDialect, mode domain.RunModeConfig) (domain.ExecutionDecision, error) {
	if s.ConfigProvider == nil || s.Detector == nil || s.Policy == nil {
		return domain.ExecutionDecision{}, errors.New("query.Service dependencies not satisfied")
	}
	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.ExecutionDecision{}, fmt.Errorf("load config: %w", err)
	}
	env, err := s.environment(ctx, cfg, dialectOverride)
	if err != nil {
		return domain.ExecutionDecision{}, err
	}
	return s.Policy.Evaluate(domain.CandidateCommand{Text: text, Dialect: env.Dialect}, mode)
}

// environment resolves the dialect: request override, then config, then detection.
func (s *Service) environment(ctx context.Context, cfg domain.Config, override domain.ShellDialect) (domain.EnvironmentInfo, error) {
	env, err := s.Detector.Detect(ctx)
	if err != nil {
		return domain.EnvironmentInfo{}, fmt.Errorf("detect environment: %w", err)
	}
	if override != "" {
		env.Dialect = override
	} else if configured, ok := cfg.ExecutionDialect(); ok {
		env.Dialect = configured
	}
	return env, nil
}

func (s *Service) generate(ctx context.Context, generator ports.Generator, req domain.QueryRequest, cfg domain.Config, env domain.EnvironmentInfo) (domain.CandidateCommand, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = cfg.GenerationTimeout()
	}
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	candidate, err := generator.Generate(genCtx, ports.GenerationRequest{Prompt: req.Prompt, Env: env})
	if err == nil {
		if candidate.Dialect == "" {
			candidate.Dialect = env.Dialect
		}
		return candidate, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		// interrupted: no decision, nothing recorded
		return domain.CandidateCommand{}, ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = &domain.GenerationUnavailableError{
			Provider: generator.Name(),
			Err:      fmt.Errorf("no reply within %s: %w", timeout, err),
		}
	}
	return domain.CandidateCommand{}, fmt.Errorf("generate command: %w", err)
}

// record appends the invocation to history. Failures are logged, never returned.
func (s *Service) record(cfg domain.Config, resp domain.QueryResponse, model string, evalErr error) {
	if s.History == nil || !cfg.History.Enabled {
		return
	}
	rec := domain.HistoryRecord{
		ID:      resp.ID,
		Prompt:  resp.Prompt,
		Command: resp.Candidate.Text,
		Dialect: resp.Candidate.Dialect,
		Model:   model,
		Action:  domain.ActionBlock,
	}
	if evalErr != nil {
		rec.MatchedRule = RuleMalformed
	}
	if resp.Decided {
		rec.Action = resp.Decision.Action
		rec.RiskLevel = resp.Decision.MaxLevel()
		if resp.Decision.MostSevere >= 0 && resp.Decision.MostSevere < len(resp.Decision.Segments) {
			rec.MatchedRule = resp.Decision.Segments[resp.Decision.MostSevere].Verdict.MatchedRule
		}
	}
	if resp.Outcome != nil {
		rec.Executed = resp.Outcome.Executed
		rec.Success = resp.Outcome.Success()
		rec.ExitCode = resp.Outcome.ExitCode
		rec.ExecutionTimeMS = resp.Outcome.Duration.Milliseconds()
	}
	rec.Timestamp = time.Now()

	if err := s.History.Save(rec); err != nil {
		s.Logger.Warn("history save failed", map[string]interface{}{"error": err.Error()})
	}
}

func pickModel(cfg domain.Config, override string) (domain.ModelDefinition, error) {
	name := override
	if name == "" {
		name = cfg.Preferences.DefaultModel
	}
	if name == "" && len(cfg.Models) > 0 {
		return cfg.Models[0], nil
	}
	if model, ok := cfg.FindModelByName(name); ok {
		return model, nil
	}
	return domain.ModelDefinition{}, fmt.Errorf("model %s not configured", name)
}
