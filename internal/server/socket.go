// Package server exposes the action dispatcher on a Unix domain socket.
//
// Each connection carries one newline-terminated JSON request and receives
// one newline-terminated JSON response. Access control is the socket's
// file mode and group ownership; there is no in-band authentication.
package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/blockhost/rootagent/internal/action"
	"github.com/blockhost/rootagent/internal/clog"
)

// Defaults for SocketServer.
const (
	DefaultSocketPath      = "/run/blockhost/root-agent.sock"
	DefaultSocketMode      = os.FileMode(0o660)
	DefaultMaxConcurrent   = 8
	DefaultMaxRequestBytes = 64 << 10
	DefaultReadTimeout     = 10 * time.Second
	writeTimeout           = 10 * time.Second
)

// Dispatcher handles one decoded request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req action.Request) action.Response
}

// SocketServer listens on a Unix socket and runs requests through a Dispatcher.
type SocketServer struct {
	socketPath      string
	mode            os.FileMode
	gid             int
	maxConcurrent   int
	maxRequestBytes int
	readTimeout     time.Duration
	dispatcher      Dispatcher

	listener net.Listener
	conns    errgroup.Group
	done     chan struct{}
	shutdown chan struct{}
	mu       sync.Mutex // protects listener and shutdown state
}

// Option configures a SocketServer.
type Option func(*SocketServer)

// WithSocketPath sets a custom socket path.
func WithSocketPath(path string) Option {
	return func(s *SocketServer) {
		s.socketPath = path
	}
}

// WithSocketMode sets the permission bits of the socket file.
func WithSocketMode(mode os.FileMode) Option {
	return func(s *SocketServer) {
		s.mode = mode.Perm()
	}
}

// WithGroup makes the socket group-owned by gid. A negative gid leaves
// the group unchanged.
func WithGroup(gid int) Option {
	return func(s *SocketServer) {
		s.gid = gid
	}
}

// WithMaxConcurrent bounds how many connections are served at once.
// Further connections wait in the listen backlog.
func WithMaxConcurrent(n int) Option {
	return func(s *SocketServer) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithMaxRequestBytes bounds the size of a single request line.
func WithMaxRequestBytes(n int) Option {
	return func(s *SocketServer) {
		if n > 0 {
			s.maxRequestBytes = n
		}
	}
}

// WithReadTimeout bounds how long a client may take to send its request.
func WithReadTimeout(d time.Duration) Option {
	return func(s *SocketServer) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// NewSocketServer creates a new SocketServer.
func NewSocketServer(d Dispatcher, opts ...Option) *SocketServer {
	s := &SocketServer{
		socketPath:      DefaultSocketPath,
		mode:            DefaultSocketMode,
		gid:             -1,
		maxConcurrent:   DefaultMaxConcurrent,
		maxRequestBytes: DefaultMaxRequestBytes,
		readTimeout:     DefaultReadTimeout,
		dispatcher:      d,
		shutdown:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.conns.SetLimit(s.maxConcurrent)
	return s
}

// Start begins listening on the Unix socket.
// The parent directory is created if needed. A stale socket file is
// replaced; any other file at the path is an error.
func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("server already started")
	}

	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}

	if err := removeStaleSocket(s.socketPath); err != nil {
		return err
	}

	// Create the socket with no access for others, then widen it to the
	// configured mode once ownership is set.
	oldMask := unix.Umask(0o177)
	listener, err := net.Listen("unix", s.socketPath)
	unix.Umask(oldMask)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}

	if s.gid >= 0 {
		if err := os.Chown(s.socketPath, -1, s.gid); err != nil {
			listener.Close()
			return fmt.Errorf("chown socket: %w", err)
		}
	}
	if err := os.Chmod(s.socketPath, s.mode); err != nil {
		listener.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}

	s.listener = listener
	s.done = make(chan struct{})
	go s.acceptLoop(listener)

	clog.Info("listening on %s (mode %o, max %d concurrent)", s.socketPath, s.mode, s.maxConcurrent)
	return nil
}

// Stop stops accepting connections and waits for in-flight requests to
// finish. Requests accepted but not yet dispatched are answered with an
// error.
func (s *SocketServer) Stop() error {
	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		return nil
	}
	select {
	case <-s.shutdown:
		s.mu.Unlock()
		return nil
	default:
	}

	close(s.shutdown)
	err := s.listener.Close()
	done := s.done
	s.mu.Unlock()

	<-done
	_ = s.conns.Wait()

	if rmErr := os.Remove(s.socketPath); rmErr != nil && !os.IsNotExist(rmErr) {
		clog.Warn("remove socket %s: %v", s.socketPath, rmErr)
	}
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

// SocketPath returns the path to the Unix socket.
func (s *SocketServer) SocketPath() string {
	return s.socketPath
}

func (s *SocketServer) acceptLoop(l net.Listener) {
	defer close(s.done)

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			clog.Warn("accept: %v", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		// Blocks while maxConcurrent connections are in flight.
		s.conns.Go(func() error {
			s.handleConnection(conn)
			return nil
		})
	}
}

// handleConnection reads one request, dispatches it and writes the response.
func (s *SocketServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	peer := peerOf(conn)

	_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	line, err := s.readRequest(conn)
	if err != nil {
		clog.Info("bad request from %s: %v", peer, err)
		s.writeResponse(conn, action.Failure(err))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	req, err := action.ParseRequest(line)
	if err != nil {
		clog.Info("bad request from %s: %v", peer, err)
		s.writeResponse(conn, action.Failure(err))
		return
	}

	select {
	case <-s.shutdown:
		s.writeResponse(conn, action.Failure(errors.New("server shutting down")))
		return
	default:
	}

	clog.Debug("request %q from %s", req.Action, peer)
	s.writeResponse(conn, s.dispatcher.Dispatch(context.Background(), req))
}

// readRequest reads a single newline-terminated request of bounded size.
// A request cut off by EOF without its newline is still accepted.
func (s *SocketServer) readRequest(conn net.Conn) ([]byte, error) {
	r := bufio.NewReader(io.LimitReader(conn, int64(s.maxRequestBytes)+1))
	line, err := r.ReadBytes('\n')
	if len(line) > s.maxRequestBytes {
		return nil, fmt.Errorf("request exceeds %d bytes", s.maxRequestBytes)
	}
	if err != nil {
		var ne net.Error
		switch {
		case errors.As(err, &ne) && ne.Timeout():
			return nil, errors.New("timed out reading request")
		case errors.Is(err, io.EOF) && len(bytes.TrimSpace(line)) > 0:
			// fall through with what was sent
		case errors.Is(err, io.EOF):
			return nil, errors.New("empty request")
		default:
			return nil, fmt.Errorf("failed to read request: %w", err)
		}
	}
	return line, nil
}

// writeResponse writes a newline-terminated JSON response.
func (s *SocketServer) writeResponse(conn net.Conn, resp action.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"ok":false,"error":"failed to marshal response"}`)
	}
	data = append(data, '\n')
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write(data); err != nil {
		clog.Debug("write response: %v", err)
	}
}

// removeStaleSocket removes a leftover socket file at path.
func removeStaleSocket(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat socket path: %w", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("refusing to replace non-socket file %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}
