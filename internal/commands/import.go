package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/hrdesk/internal/browser"
	"github.com/diogo/hrdesk/internal/config"
)

func newImportSessionCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	var browserName string

	cmd := &cobra.Command{
		Use:   "import-session [file]",
		Short: "Import the portal session cookie",
		Long: `Import the portal session cookie from a cookie export file or
directly from an installed browser.

A file may hold a cookie list [{"name": ..., "value": ...}] or a
{"name": "value"} object.

Examples:
  hrdesk import-session cookies.json
  hrdesk import-session --browser firefox
  hrdesk import-session --browser auto`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && browserName != "" {
				return fmt.Errorf("use either a file or --browser, not both")
			}
			if len(args) == 0 && browserName == "" {
				return fmt.Errorf("a cookie file or --browser is required (available: %s)",
					strings.Join(browser.ListAvailableBrowsers(), ", "))
			}

			e, err := loadEnv(deps, flags, false)
			if err != nil {
				return err
			}
			defer e.close()

			if len(args) == 1 {
				if _, err := config.ImportSession(args[0]); err != nil {
					return err
				}
				e.logger.Info("session imported", "source", args[0])
				fmt.Fprintln(deps.Stdout, successStyle.Render(fmt.Sprintf("✓ Session imported from %s", args[0])))
				return nil
			}

			b, err := browser.ParseBrowser(browserName)
			if err != nil {
				return err
			}
			result, err := deps.ExtractSession(cmd.Context(), b, e.cfg.Host())
			if err != nil {
				return err
			}
			if err := config.SaveSession(result.Session); err != nil {
				return err
			}

			e.logger.Info("session imported", "browser", result.BrowserName)
			fmt.Fprintln(deps.Stdout, successStyle.Render(fmt.Sprintf("✓ Session imported from %s", result.BrowserName)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&browserName, "browser", "b", "", "Read the cookie from a browser (auto, chrome, chromium, firefox, edge, opera)")
	return cmd
}
