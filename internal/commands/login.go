package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/hrdesk/internal/config"
)

func newLoginCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the HR portal",
		Long: `Sign in with your portal credentials and store the session cookie.

The password is read without echo when stdin is a terminal, otherwise
from the first line of stdin:
  echo "$PASSWORD" | hrdesk login --username jdoe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, deps, flags, username)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Portal username (default: config username)")
	return cmd
}

func runLogin(cmd *cobra.Command, deps *Dependencies, flags *globalFlags, username string) error {
	e, err := loadEnv(deps, flags, false)
	if err != nil {
		return err
	}
	defer e.close()

	// One reader for both prompts so buffered input is not lost
	in := bufio.NewReader(deps.Stdin)
	tty := deps.IsTerminal() && !stdinPiped(deps.Stdin)

	if username == "" {
		username = e.cfg.Username
	}
	if username == "" {
		fmt.Fprint(deps.Stderr, "Username: ")
		username, err = readLine(in)
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}

	var password string
	if tty {
		fmt.Fprint(deps.Stderr, "Password: ")
		password, err = deps.ReadPassword()
		fmt.Fprintln(deps.Stderr)
	} else {
		password, err = readLine(in)
	}
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	client, err := deps.NewClient(e.cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	session, err := client.Login(cmd.Context(), username, password)
	if err != nil {
		e.logger.Warn("login failed", "username", username, "error", err)
		return err
	}
	if err := config.SaveSession(session); err != nil {
		return err
	}

	if e.cfg.Username != username {
		saved, err := config.LoadConfig()
		if err == nil {
			saved.Username = username
			err = config.SaveConfig(saved)
		}
		if err != nil {
			fmt.Fprintf(deps.Stderr, "Warning: could not remember username: %v\n", err)
		}
	}

	e.logger.Info("logged in", "username", username, "host", client.Host())
	fmt.Fprintln(deps.Stdout, successStyle.Render(fmt.Sprintf("✓ Logged in to %s as %s", client.Host(), username)))
	return nil
}

// readLine reads one line without its line ending. EOF after some input is
// not an error.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
