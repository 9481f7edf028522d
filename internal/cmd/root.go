// Package cmd implements the CLI commands for rootagent.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/blockhost/rootagent/internal/term"
	"github.com/blockhost/rootagent/internal/version"
)

// Persistent flag values shared by all subcommands.
var (
	configPath string
	debugFlag  bool
	socketFlag string
	vmidFlag   vmidRangeFlag
	imageRoots []string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rootagent",
	Short: "Privileged VM action gateway",
	Long: `rootagent runs a fixed set of Proxmox VM lifecycle actions and account
annotation updates on behalf of unprivileged callers.

Requests arrive as JSON over a local Unix socket. Each request names an action
from a closed table; its parameters are validated and turned into an argument
vector for qm or usermod. Nothing reaches a shell.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $ROOT_AGENT_CONFIG or /etc/blockhost/root-agent.yaml)")
	pf.BoolVar(&debugFlag, "debug", false, "enable debug logging")
	pf.StringVar(&socketFlag, "socket", "", "override the socket path")
	pf.Var(&vmidFlag, "vmid-range", "override the accepted VMID range, e.g. 100-999")
	pf.StringSliceVar(&imageRoots, "image-root", nil, "additional directory disk images may be imported from (repeatable)")

	rootCmd.SetVersionTemplate("rootagent {{.Version}}\n")
}

// Execute runs the root command and returns any error.
// Errors other than an ExitCodeError are reported on stderr.
func Execute() error {
	err := rootCmd.Execute()
	var exitErr *ExitCodeError
	if err != nil && !errors.As(err, &exitErr) {
		term.Error("%v", err)
	}
	return err
}
