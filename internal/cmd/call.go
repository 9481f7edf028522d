package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockhost/rootagent/internal/server"
	"github.com/blockhost/rootagent/internal/term"
)

var (
	callRequest string
	callTimeout time.Duration
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Send one request to a running agent",
	Long: `Send a single request to the agent over its Unix socket and print the
response as one JSON line. The request is read from --request or from stdin.
The exit status is 0 when the response reports success and 1 otherwise.`,
	Args: cobra.NoArgs,
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVarP(&callRequest, "request", "r", "", "request JSON (default: read stdin)")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 0, "give up waiting after this long (default 15m)")
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req, err := readRequest(cmd, callRequest, cfg.Socket.MaxRequestBytes)
	if err != nil {
		return err
	}

	client := server.NewClient(cfg.Socket.Path)
	client.Timeout = callTimeout

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := client.Call(ctx, req)
	if err != nil {
		return err
	}
	if err := term.PrintJSON(resp); err != nil {
		return err
	}
	if code := exitCodeForResponse(resp); code != ExitOK {
		return NewExitCodeError(code)
	}
	return nil
}
