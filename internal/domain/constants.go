package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultExecutionTimeout bounds each launched process
	DefaultExecutionTimeout = 30 * time.Second
	// DefaultGenerationTimeout bounds one provider call
	DefaultGenerationTimeout = 60 * time.Second
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
	// DefaultHistoryRetainDays is the default number of days to retain history
	DefaultHistoryRetainDays = 30
)

// Cache constants
const (
	// DefaultCacheTTL is how long a generated candidate is reused
	DefaultCacheTTL = time.Hour
	// DefaultMaxCacheEntries is the maximum number of cache entries
	DefaultMaxCacheEntries = 100
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 1024
)

// Exit codes surfaced by the CLI.
const (
	ExitOK          = 0
	ExitBlocked     = 1
	ExitMalformed   = 2
	ExitGeneration  = 3
	ExitLaunch      = 127
	ExitInterrupted = 130
)

// TimestampFormat is the standard timestamp format
const TimestampFormat = time.RFC3339
