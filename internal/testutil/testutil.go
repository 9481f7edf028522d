// Package testutil provides shared test helpers for rootagent tests.
package testutil

import (
	"os"
	"testing"
)

// ShortTempDir creates a temp directory whose path is short enough to
// hold a Unix socket. t.TempDir() paths can exceed the ~108 byte limit.
func ShortTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "ra")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// RequireTool skips the test unless path is an executable file.
func RequireTool(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Skipf("%s not available: %v", path, err)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		t.Skipf("%s is not executable", path)
	}
}
