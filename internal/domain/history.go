package domain

import "time"

// HistoryRecord captures one invocation: what was generated, decided and run.
type HistoryRecord struct {
	ID              string       `json:"id"`
	Timestamp       time.Time    `json:"timestamp"`
	Prompt          string       `json:"prompt"`
	Command         string       `json:"command"`
	Dialect         ShellDialect `json:"dialect"`
	Model           string       `json:"model"`
	Action          Action       `json:"action"`
	RiskLevel       RiskLevel    `json:"risk_level"`
	MatchedRule     string       `json:"matched_rule"`
	Executed        bool         `json:"executed"`
	Success         bool         `json:"success"`
	ExitCode        int          `json:"exit_code"`
	ExecutionTimeMS int64        `json:"execution_time_ms"`
}
