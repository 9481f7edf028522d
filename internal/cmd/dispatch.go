package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blockhost/rootagent/internal/action"
	"github.com/blockhost/rootagent/internal/clog"
	"github.com/blockhost/rootagent/internal/term"
)

var dispatchRequest string

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run one request in-process",
	Long: `Run a single request without going through the socket.

The request is read from --request or from stdin and the response is printed
as one JSON line. The exit status is 0 on success, 2 when the request was
rejected, 124 when the action timed out, and 1 for any other failure.`,
	Args: cobra.NoArgs,
	RunE: runDispatch,
}

func init() {
	dispatchCmd.Flags().StringVarP(&dispatchRequest, "request", "r", "", "request JSON (default: read stdin)")
	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := configureLogging(cfg, false); err != nil {
		return err
	}
	defer func() { _ = clog.Close() }()

	req, err := readRequest(cmd, dispatchRequest, cfg.Socket.MaxRequestBytes)
	if err != nil {
		if errors.Is(err, errTerminalInput) {
			return err
		}
		if err := term.PrintJSON(action.Failure(err)); err != nil {
			return err
		}
		return NewExitCodeError(ExitRejected)
	}

	a, err := newAgent(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output, runErr := a.dispatcher.Run(ctx, req)
	resp := action.Success(output)
	if runErr != nil {
		resp = action.Failure(runErr)
	}
	if err := term.PrintJSON(resp); err != nil {
		return err
	}
	if code := exitCodeFor(runErr); code != ExitOK {
		return NewExitCodeError(code)
	}
	return nil
}
