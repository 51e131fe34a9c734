package commands

import (
	"fmt"
	"time"

	"github.com/diogo/hrdesk/internal/chat"
	"github.com/diogo/hrdesk/internal/config"
	"github.com/diogo/hrdesk/internal/format"
	"github.com/diogo/hrdesk/internal/history"
)

// connect loads the stored session and builds the portal client
func connect(deps *Dependencies, e *env) (PortalClient, error) {
	session, err := config.LoadSession()
	if err != nil {
		return nil, err
	}
	client, err := deps.NewClient(e.cfg, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// formatterFor builds the reply formatter configured by cfg
func formatterFor(cfg config.Config, d format.Dialect) *format.Formatter {
	opts := []format.Option{format.WithDialect(d)}
	if cfg.LineScanLists {
		opts = append(opts, format.WithLineScan())
	}
	if cfg.EscapeHTML {
		opts = append(opts, format.WithEscaping())
	}
	return format.New(opts...)
}

// newController wires a controller to backend. rec may be nil.
func newController(e *env, backend chat.Backend, d format.Dialect, rec *history.Recorder) *chat.Controller {
	opts := []chat.Option{
		chat.WithFormatter(formatterFor(e.cfg, d)),
		chat.WithLogger(e.logger),
		chat.WithQuickQuestions(e.cfg.Questions()),
		chat.WithTimeout(time.Duration(e.cfg.TimeoutSeconds) * time.Second),
		chat.WithMiddleware(
			chat.NewRecoveryMiddleware(e.cfg.Verbose),
			chat.NewLoggingMiddleware(e.logger),
			chat.NewContextCheckMiddleware(),
		),
	}
	if rec != nil {
		opts = append(opts, chat.WithRecorder(rec))
	}
	return chat.New(backend, opts...)
}

// openRecorder returns a recorder for a new conversation, or nil when
// history is disabled. A broken store only costs the transcript.
func openRecorder(deps *Dependencies, e *env) *history.Recorder {
	if !e.cfg.SaveHistory {
		return nil
	}
	store, err := history.DefaultStore()
	if err != nil {
		e.logger.Warn("history disabled", "error", err)
		fmt.Fprintf(deps.Stderr, "Warning: history disabled: %v\n", err)
		return nil
	}
	return store.NewConversationRecorder(e.cfg.BaseURL, e.cfg.Username)
}
