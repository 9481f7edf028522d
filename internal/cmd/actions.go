package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/blockhost/rootagent/internal/action"
	"github.com/blockhost/rootagent/internal/term"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the actions the agent accepts",
	Long: `List every action in the table with its aliases, timeout and, for
create and set, the flags or keys a caller may pass. Config overrides such as
per-action timeouts are applied.`,
	Args: cobra.NoArgs,
	RunE: runActions,
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}

func runActions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	policy, err := cfg.ActionPolicy()
	if err != nil {
		return err
	}
	reg, err := action.NewRegistry(policy)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(term.Stdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ACTION\tALIASES\tTIMEOUT\tCOMMAND\tALLOWED")
	for _, d := range reg.Descriptors() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.Name,
			orDash(strings.Join(d.Aliases, ",")),
			d.Timeout,
			commandOf(d),
			orDash(strings.Join(d.AllowedList(), ",")),
		)
	}
	return w.Flush()
}

func commandOf(d *action.Descriptor) string {
	if d.Subcommand == "" {
		return d.Tool
	}
	return d.Tool + " " + d.Subcommand
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
