package cmd

import (
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	res := run(t, "", "--help")
	if res.err != nil {
		t.Fatalf("root command --help returned error: %v", res.err)
	}

	expectedStrings := []string{
		"rootagent",
		"Unix socket",
		"Usage:",
		"Available Commands:",
		"serve",
		"dispatch",
		"actions",
		"--vmid-range",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(res.stdout, expected) {
			t.Errorf("help output missing expected string %q\nGot: %s", expected, res.stdout)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	res := run(t, "", "--version")
	if res.err != nil {
		t.Fatalf("root command --version returned error: %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "rootagent dev") {
		t.Errorf("version output = %q, want prefix %q", res.stdout, "rootagent dev")
	}
}

func TestRootCommand_UnknownCommandReported(t *testing.T) {
	res := run(t, "", "frobnicate")
	if res.err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(res.stderr, "Error: unknown command") {
		t.Errorf("stderr = %q, want unknown command error", res.stderr)
	}
}

func TestRootCommand_BadVMIDRangeFlag(t *testing.T) {
	env := newTestEnv(t, "/bin/echo")
	res := run(t, "", "--config", env.configPath, "--vmid-range", "abc", "actions")
	if res.err == nil {
		t.Fatal("expected error for malformed --vmid-range")
	}
	if !strings.Contains(res.stderr, "expected MIN-MAX") {
		t.Errorf("stderr = %q", res.stderr)
	}
}
