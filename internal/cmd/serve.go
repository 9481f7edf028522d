package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blockhost/rootagent/internal/clog"
	"github.com/blockhost/rootagent/internal/config"
	"github.com/blockhost/rootagent/internal/server"
	"github.com/blockhost/rootagent/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the agent on its Unix socket",
	Long: `Listen on the configured Unix socket and handle one request per
connection until SIGINT or SIGTERM.

The socket is created with the configured mode and group. Any process that can
connect to it may run every action in the table, so keep the group narrow.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := configureLogging(cfg, true); err != nil {
		return err
	}
	defer func() { _ = clog.Close() }()
	defer clog.RedirectStdLog()()

	srv, a, err := newServer(cfg)
	if err != nil {
		clog.Error("startup failed: %v", err)
		return err
	}
	defer func() { _ = a.Close() }()

	if err := srv.Start(); err != nil {
		clog.Error("failed to start socket server: %v", err)
		return err
	}
	clog.Info("rootagent %s listening on %s", version.String(), srv.SocketPath())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	clog.Info("received %s, shutting down", sig)

	if err := srv.Stop(); err != nil {
		clog.Warn("error during shutdown: %v", err)
		return err
	}
	clog.Info("stopped")
	return nil
}

// newServer builds the dispatcher and socket server for cfg.
func newServer(cfg *config.Config) (*server.SocketServer, *agent, error) {
	mode, err := cfg.SocketMode()
	if err != nil {
		return nil, nil, err
	}
	gid, err := cfg.SocketGID()
	if err != nil {
		return nil, nil, err
	}

	a, err := newAgent(cfg)
	if err != nil {
		return nil, nil, err
	}

	srv := server.NewSocketServer(a.dispatcher,
		server.WithSocketPath(cfg.Socket.Path),
		server.WithSocketMode(mode),
		server.WithGroup(gid),
		server.WithMaxConcurrent(cfg.Socket.MaxConcurrent),
		server.WithMaxRequestBytes(cfg.Socket.MaxRequestBytes),
		server.WithReadTimeout(cfg.ReadTimeout()),
	)
	return srv, a, nil
}
