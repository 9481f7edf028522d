package action

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blockhost/rootagent/internal/executor"
	"github.com/blockhost/rootagent/internal/validate"
)

// spyExecutor records every call and returns a canned response.
type spyExecutor struct {
	mu    sync.Mutex
	calls []executor.ExecuteRequest
	resp  executor.ExecuteResponse
}

func (s *spyExecutor) Execute(_ context.Context, req executor.ExecuteRequest) executor.ExecuteResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	return s.resp
}

func (s *spyExecutor) Calls() []executor.ExecuteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]executor.ExecuteRequest{}, s.calls...)
}

// hungExecutor never returns until released, ignoring its context.
type hungExecutor struct {
	release chan struct{}
}

func (h *hungExecutor) Execute(_ context.Context, _ executor.ExecuteRequest) executor.ExecuteResponse {
	<-h.release
	return executor.ExecuteResponse{Status: executor.StatusCompleted}
}

// lateExecutor finishes after delay regardless of its context.
type lateExecutor struct {
	delay time.Duration
}

func (l *lateExecutor) Execute(_ context.Context, _ executor.ExecuteRequest) executor.ExecuteResponse {
	time.Sleep(l.delay)
	return executor.ExecuteResponse{Status: executor.StatusCompleted, Stdout: "done"}
}

func testPolicy(t *testing.T) Policy {
	t.Helper()
	p := DefaultPolicy()
	p.VMIDMin = 100
	p.VMIDMax = 999
	p.ImageRoots = []string{t.TempDir()}
	return p
}

func newTestRegistry(t *testing.T, p Policy) *Registry {
	t.Helper()
	reg, err := NewRegistry(p)
	require.NoError(t, err)
	return reg
}

// request decodes a JSON request literal through the real wire path.
func request(t *testing.T, js string) Request {
	t.Helper()
	req, err := ParseRequest([]byte(js))
	require.NoError(t, err)
	return req
}

// params decodes a JSON object literal into an ordered Object.
func params(t *testing.T, js string) validate.Object {
	t.Helper()
	var obj validate.Object
	require.NoError(t, json.Unmarshal([]byte(js), &obj))
	return obj
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("qcow2"), 0o600))
	return path
}

const shortTimeout = 50 * time.Millisecond
