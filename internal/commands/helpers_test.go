package commands

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/diogo/hrdesk/internal/browser"
	"github.com/diogo/hrdesk/internal/chat"
	"github.com/diogo/hrdesk/internal/config"
	"github.com/diogo/hrdesk/internal/tui"
)

// fakeClient is a PortalClient with canned answers
type fakeClient struct {
	mu sync.Mutex

	reply   string
	sendErr error
	sent    []string

	session   *config.Session
	loginErr  error
	logins    [][2]string
	logoutErr error
	loggedOut bool
	closed    bool
}

func (c *fakeClient) Send(ctx context.Context, message string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, message)
	return c.reply, c.sendErr
}

func (c *fakeClient) Login(ctx context.Context, username, password string) (*config.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logins = append(c.logins, [2]string{username, password})
	if c.loginErr != nil {
		return nil, c.loginErr
	}
	return c.session, nil
}

func (c *fakeClient) Logout(ctx context.Context) error {
	c.loggedOut = true
	return c.logoutErr
}

func (c *fakeClient) GetSession() *config.Session { return c.session }
func (c *fakeClient) BaseURL() string             { return "https://hr.example.com" }
func (c *fakeClient) Host() string                { return "hr.example.com" }
func (c *fakeClient) Close()                      { c.closed = true }

// testEnv bundles the fake dependencies and captured output of one test
type testEnv struct {
	deps   *Dependencies
	client *fakeClient
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	copied []string

	tuiOpts *tui.Options
	tuiCtrl *chat.Controller

	gotSession *config.Session
}

// newTestEnv points the config directory at a temp dir and fakes every
// external dependency
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(config.HomeEnv, t.TempDir())
	t.Setenv("GLAMOUR_STYLE", "")

	te := &testEnv{
		client: &fakeClient{reply: "ok"},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	te.deps = &Dependencies{
		NewClient: func(cfg config.Config, session *config.Session) (PortalClient, error) {
			te.gotSession = session
			return te.client, nil
		},
		RunTUI: func(ctrl *chat.Controller, opts tui.Options) error {
			te.tuiCtrl = ctrl
			te.tuiOpts = &opts
			return nil
		},
		ExtractSession: func(ctx context.Context, b browser.SupportedBrowser, host string) (*browser.ExtractResult, error) {
			return &browser.ExtractResult{Session: config.NewSession("from-browser", host), BrowserName: "firefox"}, nil
		},
		ReadPassword: func() (string, error) { return "tty-secret", nil },
		Copy: func(text string) error {
			te.copied = append(te.copied, text)
			return nil
		},
		IsTerminal:    func() bool { return false },
		TerminalWidth: func() int { return 100 },
		Stdout:        te.stdout,
		Stderr:        te.stderr,
	}
	return te
}

// run executes the root command with args
func (te *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCmd(te.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(t.Context())
}

func (te *testEnv) withStdin(s string) {
	te.deps.Stdin = bytes.NewBufferString(s)
}

// login stores a session so commands that need one can connect
func login(t *testing.T) {
	t.Helper()
	if err := config.SaveSession(config.NewSession("abc123", "hr.example.com")); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
}

func setConfig(t *testing.T, key, value string) {
	t.Helper()
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if err := cfg.Set(key, value); err != nil {
		t.Fatalf("Set(%s) error = %v", key, err)
	}
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
}
