package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/hrdesk/internal/api"
	"github.com/diogo/hrdesk/internal/browser"
	"github.com/diogo/hrdesk/internal/chat"
	"github.com/diogo/hrdesk/internal/config"
	"github.com/diogo/hrdesk/internal/tui"
)

// PortalClient is the part of api.Client the commands use
type PortalClient interface {
	chat.Backend
	Login(ctx context.Context, username, password string) (*config.Session, error)
	Logout(ctx context.Context) error
	GetSession() *config.Session
	BaseURL() string
	Host() string
	Close()
}

// Dependencies holds the external dependencies of the commands so tests can
// replace the network, the terminal and the clipboard.
type Dependencies struct {
	// NewClient builds the portal client for cfg
	NewClient func(cfg config.Config, session *config.Session) (PortalClient, error)

	// RunTUI runs the interactive chat
	RunTUI func(ctrl *chat.Controller, opts tui.Options) error

	// ExtractSession reads the session cookie from a browser
	ExtractSession func(ctx context.Context, b browser.SupportedBrowser, host string) (*browser.ExtractResult, error)

	// ReadPassword reads a password without echo
	ReadPassword func() (string, error)

	// Copy writes to the system clipboard
	Copy func(text string) error

	// IsTerminal reports whether stdout is a terminal
	IsTerminal func() bool

	// TerminalWidth returns the stdout width in columns
	TerminalWidth func() int

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewDependencies returns the production dependencies
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:      newPortalClient,
		RunTUI:         tui.Run,
		ExtractSession: browser.ExtractSession,
		ReadPassword:   readPassword,
		Copy:           clipboard.WriteAll,
		IsTerminal:     isStdoutTTY,
		TerminalWidth:  getTerminalWidth,
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
	}
}

func newPortalClient(cfg config.Config, session *config.Session) (PortalClient, error) {
	opts := []api.ClientOption{api.WithTimeoutSeconds(cfg.TimeoutSeconds)}
	if session != nil {
		opts = append(opts, api.WithSession(session))
	}
	c, err := api.NewClient(cfg.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func readPassword() (string, error) {
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
