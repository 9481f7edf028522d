package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/blockhost/rootagent/internal/action"
	"github.com/blockhost/rootagent/internal/audit"
	"github.com/blockhost/rootagent/internal/clog"
	"github.com/blockhost/rootagent/internal/config"
	"github.com/blockhost/rootagent/internal/executor"
)

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	path := config.Path(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	config.Overrides{
		SocketPath: socketFlag,
		VMIDRange:  vmidFlag.Range(),
		ImageRoots: imageRoots,
		Debug:      debugFlag,
	}.Apply(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// configureLogging points the operational logger at the configured file.
// In daemon mode nothing is written to stderr.
func configureLogging(cfg *config.Config, daemon bool) error {
	return clog.Configure(cfg.Log.File, clog.ParseLevel(cfg.Log.Level), daemon)
}

// agent bundles the components built from one config.
type agent struct {
	dispatcher *action.Dispatcher
	closers    []io.Closer
}

func newAgent(cfg *config.Config) (*agent, error) {
	policy, err := cfg.ActionPolicy()
	if err != nil {
		return nil, err
	}
	reg, err := action.NewRegistry(policy)
	if err != nil {
		return nil, fmt.Errorf("failed to build action table: %w", err)
	}

	a := &agent{}

	var auditOut io.Writer
	if cfg.Log.AuditFile != "" {
		f, err := clog.OpenLogFile(cfg.Log.AuditFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		auditOut = f
		a.closers = append(a.closers, f)
	}

	exec := executor.NewRealExecutor(
		executor.WithEnv(cfg.Exec.Env),
		executor.WithKillGrace(cfg.KillGrace()),
		executor.WithMaxOutputBytes(cfg.Exec.MaxOutputBytes),
	)
	a.dispatcher = action.NewDispatcher(reg, exec,
		action.WithAuditLogger(audit.NewLogger(auditOut)),
		action.WithGrace(exec.MaxOverrun()),
	)
	return a, nil
}

// Close releases files opened by newAgent.
func (a *agent) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
