package commands

// Default limits for history subcommands
const (
	MaxHistoryAnalysisRecords = 1000
	TopCommandsShown          = 5
)

// Error messages
const (
	ErrContainerUnavailable     = "application not initialized"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrHistoryStoreUnavailable  = "history store unavailable (is history.enabled false?)"
	ErrCacheDisabled            = "generation cache is disabled (cache.enabled in config)"
	ErrQueryRequired            = "--query required"
	ErrPromptRequired           = "describe what the command should do"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
	MsgHistoryCleared           = "History cleared."
	MsgNoCachedResponses        = "No cached responses."
	MsgCacheCleared             = "Cache cleared."
)

// AnnotationSkipContainer marks commands that run before or without the
// application container.
const AnnotationSkipContainer = "aiterm/skip-container"
