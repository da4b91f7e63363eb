package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandBlocked is returned when policy refuses to run a command.
	ErrCommandBlocked = errors.New("command blocked by safety policy")
	// ErrConfirmationDeclined is returned when the user does not affirm a Confirm decision.
	ErrConfirmationDeclined = errors.New("confirmation declined")
)

// MalformedCommandError reports candidate text that cannot be tokenized.
type MalformedCommandError struct {
	Text   string
	Reason string
}

func (e *MalformedCommandError) Error() string {
	return fmt.Sprintf("malformed command: %s", e.Reason)
}

// GenerationUnavailableError reports a failed or timed-out generation call.
type GenerationUnavailableError struct {
	Provider string
	Err      error
}

func (e *GenerationUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation unavailable (%s)", e.Provider)
	}
	return fmt.Sprintf("generation unavailable (%s): %v", e.Provider, e.Err)
}

func (e *GenerationUnavailableError) Unwrap() error {
	return e.Err
}

// ExitStatusError carries a nonzero exit code from an executed segment.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}
