package domain

import (
	"context"
	"time"
)

// QueryRequest captures one user invocation originating from the CLI.
type QueryRequest struct {
	Context         context.Context
	Prompt          string
	ModelOverride   string
	DialectOverride ShellDialect
	RunMode         RunModeConfig
	// Timeout bounds generation; zero means the configured default.
	Timeout time.Duration
}

// QueryResponse is the canonical response propagated back to the CLI.
type QueryResponse struct {
	ID          string
	Prompt      string
	Candidate   CandidateCommand
	Environment EnvironmentInfo
	Decision    ExecutionDecision
	Outcome     *ExecutionOutcome
	Decided     bool
}

// SegmentOutcome records what happened to one segment during replay.
type SegmentOutcome struct {
	Index    int
	Ran      bool
	Skipped  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
	Duration time.Duration
}

// ExecutionOutcome is the result of realizing a decision.
type ExecutionOutcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Executed bool
	Declined bool
	Preview  bool
	Segments []SegmentOutcome
	Duration time.Duration
}

// Success reports whether anything ran and the final exit code was zero.
func (o ExecutionOutcome) Success() bool {
	return o.Executed && o.ExitCode == 0
}
