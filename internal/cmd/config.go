package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blockhost/rootagent/internal/action"
	"github.com/blockhost/rootagent/internal/config"
	"github.com/blockhost/rootagent/internal/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage rootagent configuration",
	Long: `Manage the root agent configuration file.

The configuration file is located at /etc/blockhost/root-agent.yaml unless
--config or $ROOT_AGENT_CONFIG names another one.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  "Display the effective configuration: file settings merged with defaults and command-line overrides.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration",
	Long:  "Load the configuration, validate it and build the action table without starting the agent.",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config in editor",
	Long:  "Open the configuration file in $EDITOR (defaults to vi), creating it with defaults first if needed.",
	Args:  cobra.NoArgs,
	RunE:  runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	Args:  cobra.NoArgs,
	Run:   runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	Long:  "Create the configuration file with commented defaults. An existing file is left untouched.",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	term.Printf("%s", data)
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := cfg.SocketGID(); err != nil {
		return err
	}
	policy, err := cfg.ActionPolicy()
	if err != nil {
		return err
	}
	if _, err := action.NewRegistry(policy); err != nil {
		return err
	}
	for _, tool := range []string{cfg.Tools.QM, cfg.Tools.Usermod} {
		if _, err := os.Stat(tool); err != nil {
			term.Warn("%s not found; actions using it will fail", tool)
		}
	}
	term.Println("configuration OK:", config.Path(configPath))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.Edit(config.Path(configPath)); err != nil {
		return fmt.Errorf("failed to edit config: %w", err)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) {
	term.Println(config.Path(configPath))
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.Path(configPath)
	if _, err := os.Stat(path); err == nil {
		term.Println("Config already exists at:", path)
		return nil
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	term.Println("Created default config at:", path)
	return nil
}
