package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// TestRealExecutorInterface verifies RealExecutor implements Executor.
func TestRealExecutorInterface(_ *testing.T) {
	var _ Executor = &RealExecutor{}
	var _ Executor = NewRealExecutor()
}

// TestRealExecutorEchoHello verifies basic command execution.
func TestRealExecutorEchoHello(t *testing.T) {
	executor := NewRealExecutor()
	req := ExecuteRequest{
		Argv: []string{"echo", "hello"},
	}

	resp := executor.Execute(context.Background(), req)

	if resp.Status != StatusCompleted {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	if resp.ExitCode != 0 {
		t.Errorf("ExitCode: got %d, want 0", resp.ExitCode)
	}
	if !strings.Contains(resp.Stdout, "hello") {
		t.Errorf("Stdout should contain 'hello', got: %q", resp.Stdout)
	}
	if resp.Error != "" {
		t.Errorf("Error should be empty, got: %q", resp.Error)
	}
}

// TestRealExecutorNoShellExpansion verifies argv entries reach the child verbatim.
func TestRealExecutorNoShellExpansion(t *testing.T) {
	executor := NewRealExecutor()
	req := ExecuteRequest{
		Argv: []string{"echo", "$(id)", "a;b", "*"},
	}

	resp := executor.Execute(context.Background(), req)

	if got, want := strings.TrimSpace(resp.Stdout), "$(id) a;b *"; got != want {
		t.Errorf("Stdout: got %q, want %q", got, want)
	}
}

// TestRealExecutorEmptyArgv verifies an empty argv is rejected without spawning.
func TestRealExecutorEmptyArgv(t *testing.T) {
	resp := NewRealExecutor().Execute(context.Background(), ExecuteRequest{})

	if resp.Status != StatusError {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusError)
	}
}

// TestRealExecutorNonexistentCommand verifies error handling for missing executables.
func TestRealExecutorNonexistentCommand(t *testing.T) {
	executor := NewRealExecutor()
	req := ExecuteRequest{
		Argv: []string{"/usr/sbin/this-command-definitely-does-not-exist-anywhere"},
	}

	resp := executor.Execute(context.Background(), req)

	if resp.Status != StatusError {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusError)
	}
	if resp.Error == "" {
		t.Errorf("Error should be set for a missing executable")
	}
}

// TestRealExecutorTimeout verifies timeout handling.
func TestRealExecutorTimeout(t *testing.T) {
	executor := NewRealExecutor(WithKillGrace(0))
	req := ExecuteRequest{
		Argv:    []string{"sleep", "10"},
		Timeout: 100 * time.Millisecond,
	}

	start := time.Now()
	resp := executor.Execute(context.Background(), req)
	elapsed := time.Since(start)

	if resp.Status != StatusTimeout {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusTimeout)
	}
	if !resp.TimedOut() {
		t.Errorf("TimedOut() should be true")
	}
	if resp.ExitCode != TimeoutExitCode {
		t.Errorf("ExitCode: got %d, want %d", resp.ExitCode, TimeoutExitCode)
	}
	if !strings.Contains(resp.Error, "timed out") {
		t.Errorf("Error should contain 'timed out', got: %q", resp.Error)
	}
	if elapsed > 3*time.Second {
		t.Errorf("Execute took %v, want well under the 10s sleep", elapsed)
	}
}

// TestRealExecutorTimeoutKillsGroup verifies children of the command are
// killed with it and do not hold the output pipes open.
func TestRealExecutorTimeoutKillsGroup(t *testing.T) {
	executor := NewRealExecutor(WithKillGrace(100 * time.Millisecond))
	req := ExecuteRequest{
		Argv:    []string{"sh", "-c", "sleep 30 & sleep 30 & wait"},
		Timeout: 100 * time.Millisecond,
	}

	start := time.Now()
	resp := executor.Execute(context.Background(), req)

	if resp.Status != StatusTimeout {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusTimeout)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Execute took %v; background children were not killed", elapsed)
	}
}

// TestRealExecutorTimeoutEscalates verifies SIGKILL follows an ignored SIGTERM.
func TestRealExecutorTimeoutEscalates(t *testing.T) {
	executor := NewRealExecutor(WithKillGrace(200 * time.Millisecond))
	req := ExecuteRequest{
		Argv:    []string{"sh", "-c", `trap "" TERM; sleep 30`},
		Timeout: 100 * time.Millisecond,
	}

	start := time.Now()
	resp := executor.Execute(context.Background(), req)

	if resp.Status != StatusTimeout {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusTimeout)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Execute took %v; SIGKILL escalation did not happen", elapsed)
	}
}

// TestRealExecutorTimeoutKillsDetachedMember verifies a group member that
// ignores SIGTERM and outlives the leader is still killed.
func TestRealExecutorTimeoutKillsDetachedMember(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "member.pid")
	member := `trap "" TERM; echo $$ > ` + pidFile + `; exec sleep 30`
	executor := NewRealExecutor(WithKillGrace(5 * time.Second))
	req := ExecuteRequest{
		Argv: []string{"sh", "-c",
			`sh -c '` + member + `' </dev/null >/dev/null 2>&1 & while [ ! -s ` + pidFile + ` ]; do sleep 0.05; done; sleep 30`},
		Timeout: 500 * time.Millisecond,
	}

	resp := executor.Execute(context.Background(), req)
	if resp.Status != StatusTimeout {
		t.Fatalf("Status: got %q, want %q", resp.Status, StatusTimeout)
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("reading member pid: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("parsing member pid %q: %v", data, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for processAlive(pid) {
		if time.Now().After(deadline) {
			_ = unix.Kill(pid, unix.SIGKILL)
			t.Fatalf("group member %d survived the timeout", pid)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// processAlive reports whether pid exists and is not a zombie.
func processAlive(pid int) bool {
	stat, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err == nil {
		// The state field follows the parenthesised command name.
		if i := strings.LastIndexByte(string(stat), ')'); i >= 0 && i+2 < len(stat) {
			return stat[i+2] != 'Z'
		}
	}
	return !errors.Is(unix.Kill(pid, 0), unix.ESRCH)
}

// TestRealExecutorExitCode verifies non-zero exit codes are captured.
func TestRealExecutorExitCode(t *testing.T) {
	executor := NewRealExecutor()
	req := ExecuteRequest{
		Argv: []string{"sh", "-c", "exit 42"},
	}

	resp := executor.Execute(context.Background(), req)

	if resp.Status != StatusCompleted {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	if resp.ExitCode != 42 {
		t.Errorf("ExitCode: got %d, want 42", resp.ExitCode)
	}
}

// TestRealExecutorStderr verifies stderr is captured separately from stdout.
func TestRealExecutorStderr(t *testing.T) {
	executor := NewRealExecutor()
	req := ExecuteRequest{
		Argv: []string{"sh", "-c", "echo out_message; echo error_message >&2"},
	}

	resp := executor.Execute(context.Background(), req)

	if resp.Status != StatusCompleted {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	if strings.TrimSpace(resp.Stderr) != "error_message" {
		t.Errorf("Stderr: got %q, want only 'error_message'", resp.Stderr)
	}
	if strings.TrimSpace(resp.Stdout) != "out_message" {
		t.Errorf("Stdout: got %q, want only 'out_message'", resp.Stdout)
	}
}

// TestRealExecutorStdinClosed verifies the child sees EOF on stdin.
func TestRealExecutorStdinClosed(t *testing.T) {
	executor := NewRealExecutor()
	req := ExecuteRequest{
		Argv:    []string{"cat"},
		Timeout: 2 * time.Second,
	}

	resp := executor.Execute(context.Background(), req)

	if resp.Status != StatusCompleted || resp.ExitCode != 0 {
		t.Errorf("cat should exit on EOF, got status %q exit %d", resp.Status, resp.ExitCode)
	}
}

// TestRealExecutorContextCancelled verifies context cancellation is handled.
func TestRealExecutorContextCancelled(t *testing.T) {
	executor := NewRealExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	req := ExecuteRequest{
		Argv: []string{"sleep", "10"},
	}

	resp := executor.Execute(ctx, req)

	if resp.Status != StatusError {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusError)
	}
	if resp.TimedOut() {
		t.Errorf("cancellation should not be reported as a timeout")
	}
}

// TestRealExecutorEnvNotInherited verifies the child gets only the fixed environment.
func TestRealExecutorEnvNotInherited(t *testing.T) {
	t.Setenv("EXECUTOR_TEST_INHERITED", "inherited_value")

	executor := NewRealExecutor()
	req := ExecuteRequest{
		Argv: []string{"sh", "-c", "echo \"[$EXECUTOR_TEST_INHERITED][$LC_ALL]\""},
	}

	resp := executor.Execute(context.Background(), req)

	if got := strings.TrimSpace(resp.Stdout); got != "[][C]" {
		t.Errorf("Stdout: got %q, want %q", got, "[][C]")
	}
}

// TestRealExecutorCustomEnv verifies WithEnv replaces the default environment.
func TestRealExecutorCustomEnv(t *testing.T) {
	executor := NewRealExecutor(WithEnv([]string{"PATH=" + os.Getenv("PATH"), "TEST_VAR=test_value_12345"}))
	req := ExecuteRequest{
		Argv: []string{"sh", "-c", "echo $TEST_VAR"},
	}

	resp := executor.Execute(context.Background(), req)

	if !strings.Contains(resp.Stdout, "test_value_12345") {
		t.Errorf("Stdout should contain 'test_value_12345', got: %q", resp.Stdout)
	}
}

// TestRealExecutorOutputCap verifies output beyond the limit is discarded.
func TestRealExecutorOutputCap(t *testing.T) {
	executor := NewRealExecutor(WithMaxOutputBytes(1024))
	req := ExecuteRequest{
		Argv: []string{"sh", "-c", "head -c 5000 /dev/zero | tr '\\0' a"},
	}

	resp := executor.Execute(context.Background(), req)

	if resp.Status != StatusCompleted || resp.ExitCode != 0 {
		t.Fatalf("command failed: status %q exit %d stderr %q", resp.Status, resp.ExitCode, resp.Stderr)
	}
	if len(resp.Stdout) != 1024 {
		t.Errorf("len(Stdout): got %d, want 1024", len(resp.Stdout))
	}
}

// TestRealExecutorMaxOverrun verifies the overrun tracks the kill grace.
func TestRealExecutorMaxOverrun(t *testing.T) {
	executor := NewRealExecutor(WithKillGrace(2 * time.Second))

	if got := executor.KillGrace(); got != 2*time.Second {
		t.Errorf("KillGrace: got %v, want 2s", got)
	}
	if got := executor.MaxOverrun(); got != 3*time.Second {
		t.Errorf("MaxOverrun: got %v, want 3s", got)
	}
}

// TestLimitWriter verifies partial writes at the boundary.
func TestLimitWriter(t *testing.T) {
	w := &limitWriter{limit: 5}

	n, err := w.Write([]byte("abc"))
	if n != 3 || err != nil {
		t.Fatalf("Write: got (%d, %v), want (3, nil)", n, err)
	}
	n, err = w.Write([]byte("defgh"))
	if n != 5 || err != nil {
		t.Fatalf("Write: got (%d, %v), want (5, nil)", n, err)
	}
	if _, err := w.Write([]byte("ij")); err != nil {
		t.Fatalf("Write past limit: %v", err)
	}
	if got := w.String(); got != "abcde" {
		t.Errorf("String: got %q, want %q", got, "abcde")
	}
}
