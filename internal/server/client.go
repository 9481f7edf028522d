package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/blockhost/rootagent/internal/action"
)

// Client sends requests to a running agent over its Unix socket.
type Client struct {
	// SocketPath is the agent's socket.
	SocketPath string

	// Timeout bounds a whole call when the context has no deadline.
	// If zero, 15 minutes is used, which covers the longest action.
	Timeout time.Duration
}

// NewClient creates a client for the socket at path.
func NewClient(path string) *Client {
	return &Client{SocketPath: path}
}

// Call sends one request and waits for its response.
// An error is returned only when no response could be obtained; a
// rejected or failed action is reported through Response.
func (c *Client) Call(ctx context.Context, req action.Request) (action.Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		timeout := c.Timeout
		if timeout == 0 {
			timeout = 15 * time.Minute
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.SocketPath)
	if err != nil {
		return action.Response{}, fmt.Errorf("failed to connect to agent: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	data, err := json.Marshal(req)
	if err != nil {
		return action.Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return action.Response{}, fmt.Errorf("failed to send request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		var ne net.Error
		if ctx.Err() != nil || (errors.As(err, &ne) && ne.Timeout()) {
			cause := ctx.Err()
			if cause == nil {
				cause = context.DeadlineExceeded
			}
			return action.Response{}, fmt.Errorf("waiting for response: %w", cause)
		}
		return action.Response{}, fmt.Errorf("failed to read response: %w", err)
	}

	var resp action.Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return action.Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}
