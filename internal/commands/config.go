package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/hrdesk/internal/config"
)

func newConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
		Long: `Show or change the configuration stored in config.json.

Examples:
  hrdesk config show
  hrdesk config set base_url https://hr.example.com
  hrdesk config set markdown.style light
  hrdesk config keys`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadConfig()
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				fmt.Fprintln(deps.Stdout, string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one configuration key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadConfig()
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := config.SaveConfig(cfg); err != nil {
					return err
				}
				fmt.Fprintln(deps.Stdout, successStyle.Render(fmt.Sprintf("✓ %s updated", args[0])))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config and session file paths",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfgPath, err := config.GetConfigPath()
				if err != nil {
					return err
				}
				sessionPath, err := config.GetSessionPath()
				if err != nil {
					return err
				}
				fmt.Fprintf(deps.Stdout, "config:  %s\nsession: %s\n", cfgPath, sessionPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the keys accepted by set",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(deps.Stdout, strings.Join(config.Keys(), "\n"))
			},
		},
	)

	return cmd
}
