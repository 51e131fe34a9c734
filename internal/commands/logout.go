package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/hrdesk/internal/config"
)

func newLogoutCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the portal session and delete the stored cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(deps, flags, false)
			if err != nil {
				return err
			}
			defer e.close()

			session, err := config.LoadSession()
			if err != nil {
				fmt.Fprintln(deps.Stdout, "Not logged in.")
				return nil
			}

			client, err := deps.NewClient(e.cfg, session)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			defer client.Close()

			// The local session goes either way
			if err := client.Logout(cmd.Context()); err != nil {
				e.logger.Warn("portal logout failed", "error", err)
				fmt.Fprintf(deps.Stderr, "Warning: portal logout failed: %v\n", err)
			}
			if err := config.DeleteSession(); err != nil {
				return err
			}

			fmt.Fprintln(deps.Stdout, successStyle.Render("✓ Logged out"))
			return nil
		},
	}
}
