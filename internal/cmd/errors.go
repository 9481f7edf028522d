package cmd

import (
	"errors"
	"fmt"

	"github.com/blockhost/rootagent/internal/action"
)

// Process exit codes for a finished request.
const (
	ExitOK       = 0
	ExitFailed   = 1
	ExitRejected = 2
	ExitTimeout  = 124
)

// ExitCodeError carries a process exit code out of a command whose
// result has already been reported.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError returns an ExitCodeError for code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// exitCodeFor maps a dispatch error to an exit code.
func exitCodeFor(err error) int {
	var paramErr *action.ParamError
	var timeoutErr *action.TimeoutError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, action.ErrUnknownAction), errors.As(err, &paramErr):
		return ExitRejected
	case errors.As(err, &timeoutErr):
		return ExitTimeout
	default:
		return ExitFailed
	}
}

// exitCodeForResponse maps a response received over the socket, where
// only the outcome survives.
func exitCodeForResponse(resp action.Response) int {
	if resp.OK {
		return ExitOK
	}
	return ExitFailed
}
