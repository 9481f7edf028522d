package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blockhost/rootagent/internal/clog"
	"github.com/blockhost/rootagent/internal/term"
	"github.com/blockhost/rootagent/internal/testutil"
)

// testEnv holds the files a command test runs against.
type testEnv struct {
	dir        string
	configPath string
	socketPath string
	auditPath  string
}

// newTestEnv writes a config that runs qm and usermod as the given tool.
func newTestEnv(t *testing.T, tool string) *testEnv {
	t.Helper()

	dir := testutil.ShortTempDir(t)
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "root-agent.yaml"),
		socketPath: filepath.Join(dir, "agent.sock"),
		auditPath:  filepath.Join(dir, "audit.log"),
	}
	cfg := fmt.Sprintf(`socket:
  path: %s
tools:
  qm: %s
  usermod: %s
log:
  file: ""
  audit_file: %s
`, env.socketPath, tool, tool, env.auditPath)
	if err := os.WriteFile(env.configPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return env
}

// newToolEnv is newTestEnv for tests that actually run the tool.
func newToolEnv(t *testing.T, tool string) *testEnv {
	t.Helper()
	testutil.RequireTool(t, tool)
	return newTestEnv(t, tool)
}

// result is the captured output of one command run.
type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the root command with args and resets shared state
// before and after.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	resetCommandState()
	t.Cleanup(resetCommandState)
	if stdin != "" {
		rootCmd.SetIn(strings.NewReader(stdin))
	}
	return runKeepingState(t, args...)
}

// runKeepingState executes the root command without resetting stdin or
// the terminal check, for tests that set those up themselves.
func runKeepingState(t *testing.T, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	term.SetOutput(&stdout)
	term.SetErrOutput(&stderr)
	clog.Discard()

	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func resetCommandState() {
	configPath = ""
	debugFlag = false
	socketFlag = ""
	vmidFlag = vmidRangeFlag{}
	imageRoots = nil
	dispatchRequest = ""
	callRequest = ""
	callTimeout = 0

	for _, name := range []string{"help", "version"} {
		if f := rootCmd.Flags().Lookup(name); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	}
	rootCmd.SetIn(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	term.Reset()
}

// exitCode returns the code carried by err, 0 for nil, or -1 when err
// is some other error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(*ExitCodeError); ok {
		return e.Code
	}
	return -1
}
