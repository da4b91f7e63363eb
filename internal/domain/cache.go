package domain

import "time"

// CacheEntry stores one generated candidate. Cached candidates are
// re-evaluated by the policy on every use.
type CacheEntry struct {
	Key       string           `json:"key"`
	Model     string           `json:"model"`
	Prompt    string           `json:"prompt"`
	Candidate CandidateCommand `json:"candidate"`
	CreatedAt time.Time        `json:"created_at"`
}
