package commands

import (
	"errors"
	"testing"

	"github.com/diogo/hrdesk/internal/chat"
	apierrors "github.com/diogo/hrdesk/internal/errors"
	"github.com/diogo/hrdesk/internal/render"
	"github.com/diogo/hrdesk/internal/tui"
)

func TestChat_RunsTUI(t *testing.T) {
	te := newTestEnv(t)
	login(t)
	setConfig(t, "copy_to_clipboard", "true")
	setConfig(t, "markdown.style", "light")
	te.client.reply = "**8** days"

	if err := te.run(t, "chat"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if te.tuiCtrl == nil || te.tuiOpts == nil {
		t.Fatal("RunTUI was not called")
	}
	if te.tuiOpts.Host != "hr.example.com" {
		t.Errorf("Host = %q", te.tuiOpts.Host)
	}
	if !te.tuiOpts.CopyReplies {
		t.Error("CopyReplies should follow copy_to_clipboard")
	}
	if te.tuiOpts.Render.Style != render.StyleLight {
		t.Errorf("Render.Style = %q", te.tuiOpts.Render.Style)
	}
	if te.tuiOpts.Context == nil {
		t.Error("Context should be set")
	}

	// The controller formats Markdown for glamour
	msg, err := te.tuiCtrl.Exchange(t.Context(), "Sick days?")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if msg.Content != "**8** days" || msg.Raw != "**8** days" {
		t.Errorf("reply = %+v", msg)
	}
	if te.tuiCtrl.State() != chat.Idle {
		t.Error("controller should be idle")
	}
}

func TestChat_NoSession(t *testing.T) {
	te := newTestEnv(t)
	err := te.run(t, "chat")
	if !errors.Is(err, apierrors.ErrNoSession) {
		t.Fatalf("error = %v, want ErrNoSession", err)
	}
	if te.tuiCtrl != nil {
		t.Error("RunTUI should not be called")
	}
}

func TestChat_TUIError(t *testing.T) {
	te := newTestEnv(t)
	login(t)
	want := errors.New("no tty")
	te.deps.RunTUI = func(*chat.Controller, tui.Options) error { return want }

	if err := te.run(t, "chat"); !errors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
	if !te.client.closed {
		t.Error("client should be closed")
	}
}

func TestChat_UnknownThemeWarns(t *testing.T) {
	te := newTestEnv(t)
	login(t)
	setConfig(t, "tui_theme", "solarized")

	if err := te.run(t, "chat"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := te.stderr.String(); got == "" {
		t.Error("expected a theme warning on stderr")
	}
}
