package action

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownAction is returned when an action name is not in the registry.
var ErrUnknownAction = errors.New("unknown action")

// ParamError reports a parameter rejected before any process is spawned.
// Missing distinguishes an absent required parameter from an invalid one.
type ParamError struct {
	Field   string
	Reason  string
	Missing bool
}

func (e *ParamError) Error() string {
	if e.Missing {
		return "missing parameter: " + e.Field
	}
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

// ExecError reports that the host tool ran (or could not be started) and failed.
// Message is the tool's stderr, or its stdout when stderr was empty.
type ExecError struct {
	ExitCode int
	Message  string
}

func (e *ExecError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("command exited with status %d", e.ExitCode)
}

// TimeoutError reports that the host tool was killed for running too long.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("action timed out after %s", e.Timeout)
}
