package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultEnv is the environment given to every child process.
// Nothing is inherited from the agent's own environment.
var DefaultEnv = []string{
	"PATH=/usr/sbin:/usr/bin:/sbin:/bin",
	"LC_ALL=C",
}

// Defaults for RealExecutor.
const (
	DefaultKillGrace      = 5 * time.Second
	DefaultMaxOutputBytes = 1 << 20

	// waitSlack bounds the wait for inherited pipes once the kill is sent.
	waitSlack = time.Second
)

// RealExecutor executes commands using os/exec.
type RealExecutor struct {
	env            []string
	killGrace      time.Duration
	maxOutputBytes int
}

// Option configures a RealExecutor.
type Option func(*RealExecutor)

// WithEnv replaces the child environment.
func WithEnv(env []string) Option {
	return func(e *RealExecutor) {
		e.env = append([]string{}, env...)
	}
}

// WithKillGrace sets the delay between SIGTERM and SIGKILL on timeout.
// Zero sends SIGKILL immediately.
func WithKillGrace(d time.Duration) Option {
	return func(e *RealExecutor) {
		e.killGrace = d
	}
}

// WithMaxOutputBytes caps how much of each output stream is retained.
func WithMaxOutputBytes(n int) Option {
	return func(e *RealExecutor) {
		if n > 0 {
			e.maxOutputBytes = n
		}
	}
}

// NewRealExecutor creates a new RealExecutor.
func NewRealExecutor(opts ...Option) *RealExecutor {
	e := &RealExecutor{
		env:            append([]string{}, DefaultEnv...),
		killGrace:      DefaultKillGrace,
		maxOutputBytes: DefaultMaxOutputBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// KillGrace returns the configured SIGTERM-to-SIGKILL delay.
func (e *RealExecutor) KillGrace() time.Duration {
	return e.killGrace
}

// MaxOverrun returns how long Execute may run past the request timeout
// while the process group is killed and its pipes drained.
func (e *RealExecutor) MaxOverrun() time.Duration {
	return e.KillGrace() + waitSlack
}

// Execute runs a command and returns the result.
func (e *RealExecutor) Execute(ctx context.Context, req ExecuteRequest) ExecuteResponse {
	if len(req.Argv) == 0 {
		return ExecuteResponse{Status: StatusError, Error: "empty argv"}
	}

	// Apply timeout if specified
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, req.Argv[0], req.Argv[1:]...) //nolint:gosec // G204: argv is built from validated parameters
	cmd.Env = e.env
	cmd.Dir = "/"
	cmd.Stdin = nil // reads from /dev/null

	// Put the child in its own process group so the kill reaches anything it spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	killer := &groupKiller{grace: e.killGrace}
	cmd.Cancel = func() error {
		return killer.kill(cmd.Process.Pid)
	}
	cmd.WaitDelay = e.MaxOverrun()

	stdout := &limitWriter{limit: e.maxOutputBytes}
	stderr := &limitWriter{limit: e.maxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	killer.finish()

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ExecuteResponse{
				Status:   StatusTimeout,
				ExitCode: TimeoutExitCode,
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Error:    "command timed out",
			}
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return ExecuteResponse{
				Status:   StatusError,
				ExitCode: TimeoutExitCode,
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Error:    "command canceled",
			}
		}

		// Check if executable was not found
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return ExecuteResponse{
				Status: StatusError,
				Error:  "executable not found: " + req.Argv[0],
			}
		}

		// Check for exit error (command ran but returned non-zero)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ExecuteResponse{
				Status:   StatusCompleted,
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}

		// Other errors (e.g., permission denied, etc.)
		return ExecuteResponse{
			Status: StatusError,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Error:  err.Error(),
		}
	}

	return ExecuteResponse{
		Status:   StatusCompleted,
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
}

// groupKiller terminates a process group: SIGTERM first, then SIGKILL once
// the grace period has passed.
type groupKiller struct {
	grace time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	pgid   int
	killed bool
}

func (k *groupKiller) kill(pid int) error {
	pgid := -pid
	k.mu.Lock()
	k.pgid = pgid
	k.killed = true
	k.mu.Unlock()
	if k.grace <= 0 {
		return unix.Kill(pgid, unix.SIGKILL)
	}
	if err := unix.Kill(pgid, unix.SIGTERM); err != nil {
		// Group already gone or unsignalable; escalate.
		return unix.Kill(pgid, unix.SIGKILL)
	}
	k.mu.Lock()
	k.timer = time.AfterFunc(k.grace, func() {
		// ESRCH from a group that already exited is harmless.
		_ = unix.Kill(pgid, unix.SIGKILL)
	})
	k.mu.Unlock()
	return nil
}

// finish runs once the leader has been reaped. If the group was being
// killed, members that outlived the leader get SIGKILL now rather than
// when the timer fires.
func (k *groupKiller) finish() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.timer != nil {
		k.timer.Stop()
	}
	if k.killed {
		// ESRCH means the group is already empty.
		_ = unix.Kill(k.pgid, unix.SIGKILL)
	}
}

// limitWriter buffers up to limit bytes and silently discards the rest.
// It reports full writes so the child never sees EPIPE from a full buffer.
type limitWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	w.buf.Write(p)
	return len(p), nil
}

func (w *limitWriter) String() string {
	return w.buf.String()
}
