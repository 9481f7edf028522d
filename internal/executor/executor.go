// Package executor provides the interface and types for host command execution.
package executor

import (
	"context"
	"time"
)

// Executor executes commands on the host system.
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) ExecuteResponse
}

// ExecuteRequest contains the command execution parameters.
// Argv[0] is the program; it is started directly, never through a shell.
type ExecuteRequest struct {
	Argv    []string      `json:"argv"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// ExecuteResponse contains the result of command execution.
type ExecuteResponse struct {
	Status   string `json:"status"` // "completed", "timeout", "error"
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	Error    string `json:"error,omitempty"`
}

// TimedOut reports whether the process was killed for exceeding its timeout.
func (r ExecuteResponse) TimedOut() bool {
	return r.Status == StatusTimeout
}

// Status constants for ExecuteResponse.Status.
const (
	StatusCompleted = "completed"
	StatusTimeout   = "timeout"
	StatusError     = "error"
)

// TimeoutExitCode is the synthetic exit code reported for a killed process.
const TimeoutExitCode = -1
