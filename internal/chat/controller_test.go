package chat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	apierrors "github.com/diogo/hrdesk/internal/errors"
	"github.com/diogo/hrdesk/internal/format"
	"github.com/diogo/hrdesk/internal/models"
)

// fakeBackend returns a canned reply. When block is set, Send waits for it
// to be closed or for the context to end.
type fakeBackend struct {
	mu    sync.Mutex
	reply string
	err   error
	block chan struct{}
	calls []string
}

func (f *fakeBackend) Send(ctx context.Context, message string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, message)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", apierrors.NewTransportError(models.EndpointChat, "chat request failed", ctx.Err())
		}
	}
	return f.reply, f.err
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// memRecorder collects recorded messages
type memRecorder struct {
	mu   sync.Mutex
	msgs []models.Message
	err  error
}

func (r *memRecorder) Record(msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestNew_Seed(t *testing.T) {
	c := New(&fakeBackend{})

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	seed := c.Last()
	if seed.Sender != models.SenderBot {
		t.Errorf("seed sender = %q, want bot", seed.Sender)
	}
	if seed.Raw != models.DefaultSeedMessage {
		t.Errorf("seed raw = %q", seed.Raw)
	}
	if !strings.HasPrefix(seed.Content, "<p>") {
		t.Errorf("seed should be formatted, got %q", seed.Content)
	}
	if c.State() != Idle {
		t.Errorf("State() = %v, want idle", c.State())
	}
}

func TestSubmit_BlankIsNoop(t *testing.T) {
	c := New(&fakeBackend{})

	for _, input := range []string{"", "   ", "\n\t "} {
		ex, err := c.Submit(context.Background(), input)
		if !errors.Is(err, apierrors.ErrEmptyMessage) {
			t.Errorf("Submit(%q) error = %v, want ErrEmptyMessage", input, err)
		}
		if ex != nil {
			t.Errorf("Submit(%q) returned a ticket", input)
		}
	}

	snap := c.Snapshot()
	if len(snap.Messages) != 1 || snap.Pending {
		t.Errorf("state changed: %d messages, pending=%v", len(snap.Messages), snap.Pending)
	}
}

func TestExchange_Success(t *testing.T) {
	backend := &fakeBackend{reply: "**Hi!**"}
	c := New(backend)

	ex, err := c.Submit(context.Background(), "  Hello  ")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if c.Len() != 2 {
		t.Errorf("Len() after submit = %d, want 2", c.Len())
	}
	if c.State() != Pending {
		t.Errorf("State() = %v, want pending", c.State())
	}
	last := c.Last()
	if last.Content != "Hello" || last.Sender != models.SenderUser {
		t.Errorf("last = %+v, want user Hello", last)
	}
	if len(backend.Calls()) != 0 {
		t.Error("backend called before Call()")
	}

	reply, callErr := ex.Call()
	msg, ok := c.Resolve(ex, reply, callErr)
	if !ok {
		t.Fatal("Resolve() ignored the pending ticket")
	}

	if c.Len() != 3 {
		t.Errorf("Len() after reply = %d, want 3", c.Len())
	}
	if c.State() != Idle {
		t.Errorf("State() = %v, want idle", c.State())
	}
	if msg.Sender != models.SenderBot {
		t.Errorf("reply sender = %q", msg.Sender)
	}
	if msg.Content != "<p><strong>Hi!</strong></p>" {
		t.Errorf("reply content = %q", msg.Content)
	}
	if msg.Raw != "**Hi!**" {
		t.Errorf("reply raw = %q", msg.Raw)
	}
	if calls := backend.Calls(); len(calls) != 1 || calls[0] != "Hello" {
		t.Errorf("backend calls = %v", calls)
	}
}

func TestExchange_Failure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	backend := &fakeBackend{err: apierrors.NewRequestError(500, models.EndpointChat, "chat request failed", "oops")}
	c := New(backend, WithLogger(logger))

	msg, err := c.Exchange(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Exchange() error = %v, failures must not propagate", err)
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if c.State() != Idle {
		t.Errorf("State() = %v, want idle", c.State())
	}
	if msg.Content != models.FallbackReply || msg.Sender != models.SenderBot {
		t.Errorf("reply = %+v, want fallback", msg)
	}
	if msg.Raw != "" {
		t.Errorf("fallback should carry no raw text, got %q", msg.Raw)
	}
	if !strings.Contains(logs.String(), `"status":500`) {
		t.Errorf("expected failure log with status, got %s", logs.String())
	}
}

func TestExchange_CustomFallback(t *testing.T) {
	c := New(&fakeBackend{err: errors.New("boom")}, WithFallbackText("offline"))

	msg, _ := c.Exchange(context.Background(), "Hello")
	if msg.Content != "offline" {
		t.Errorf("Content = %q, want offline", msg.Content)
	}
}

func TestSubmit_RejectedWhilePending(t *testing.T) {
	c := New(&fakeBackend{reply: "ok"})

	first, err := c.Submit(context.Background(), "one")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	second, err := c.Submit(context.Background(), "two")
	if !errors.Is(err, apierrors.ErrExchangePending) {
		t.Errorf("second Submit() error = %v, want ErrExchangePending", err)
	}
	if second != nil {
		t.Error("second Submit() returned a ticket")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	reply, callErr := first.Call()
	c.Resolve(first, reply, callErr)

	if _, err := c.Submit(context.Background(), "three"); err != nil {
		t.Errorf("Submit() after resolve error = %v", err)
	}
}

func TestResolve_StaleTicket(t *testing.T) {
	c := New(&fakeBackend{reply: "ok"})

	ex, _ := c.Submit(context.Background(), "one")
	if _, ok := c.Resolve(ex, "ok", nil); !ok {
		t.Fatal("first Resolve() should apply")
	}
	if _, ok := c.Resolve(ex, "again", nil); ok {
		t.Error("second Resolve() with the same ticket should be ignored")
	}
	if _, ok := c.Resolve(nil, "x", nil); ok {
		t.Error("Resolve(nil) should be ignored")
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := New(&fakeBackend{reply: "- a\n- b"})
	seed := c.Last()

	for _, q := range []string{"one", "two", "three"} {
		if _, err := c.Exchange(context.Background(), q); err != nil {
			t.Fatalf("Exchange(%q) error = %v", q, err)
		}
	}
	if c.Len() != 7 {
		t.Fatalf("Len() = %d, want 7", c.Len())
	}

	c.Clear()

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Len() after clear = %d, want 1", len(msgs))
	}
	if msgs[0] != seed {
		t.Errorf("seed changed: %+v vs %+v", msgs[0], seed)
	}
}

func TestClear_WhilePending(t *testing.T) {
	c := New(&fakeBackend{reply: "done"})

	ex, _ := c.Submit(context.Background(), "Hello")
	c.Clear()

	if c.State() != Pending {
		t.Error("Clear() must leave the pending flag untouched")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	reply, err := ex.Call()
	c.Resolve(ex, reply, err)
	if c.Len() != 2 || c.State() != Idle {
		t.Errorf("after resolve: Len()=%d State()=%v", c.Len(), c.State())
	}
}

func TestCancel(t *testing.T) {
	backend := &fakeBackend{block: make(chan struct{})}
	c := New(backend)

	if c.Cancel() {
		t.Error("Cancel() with nothing pending should report false")
	}

	ex, _ := c.Submit(context.Background(), "Hello")

	done := make(chan models.Message, 1)
	go func() {
		reply, err := ex.Call()
		msg, _ := c.Resolve(ex, reply, err)
		done <- msg
	}()

	if !c.Cancel() {
		t.Error("Cancel() should report true while pending")
	}

	select {
	case msg := <-done:
		if msg.Content != models.FallbackReply {
			t.Errorf("cancelled exchange content = %q, want fallback", msg.Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled exchange did not resolve")
	}
	if c.State() != Idle {
		t.Errorf("State() = %v, want idle", c.State())
	}
}

func TestTimeout(t *testing.T) {
	backend := &fakeBackend{block: make(chan struct{})}
	c := New(backend, WithTimeout(20*time.Millisecond))

	msg, err := c.Exchange(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if msg.Content != models.FallbackReply {
		t.Errorf("Content = %q, want fallback", msg.Content)
	}
}

func TestNoTimeoutByDefault(t *testing.T) {
	c := New(&fakeBackend{})
	ex, _ := c.Submit(context.Background(), "Hello")
	defer c.Resolve(ex, "", nil)

	if _, ok := ex.Context().Deadline(); ok {
		t.Error("request context should have no deadline by default")
	}
}

func TestRecorder(t *testing.T) {
	rec := &memRecorder{}
	c := New(&fakeBackend{reply: "Hi"}, WithRecorder(rec))

	c.Exchange(context.Background(), "Hello")

	if len(rec.msgs) != 2 {
		t.Fatalf("recorded %d messages, want 2", len(rec.msgs))
	}
	if rec.msgs[0].Sender != models.SenderUser || rec.msgs[1].Sender != models.SenderBot {
		t.Errorf("recorded order = %q, %q", rec.msgs[0].Sender, rec.msgs[1].Sender)
	}
}

func TestRecorder_ErrorIgnored(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	c := New(&fakeBackend{reply: "Hi"}, WithRecorder(rec))

	if _, err := c.Exchange(context.Background(), "Hello"); err != nil {
		t.Errorf("recorder failure should not surface, got %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestAsk(t *testing.T) {
	backend := &fakeBackend{reply: "8 days"}
	c := New(backend, WithQuickQuestions([]string{"Sick days?", "Vacation?"}))

	ex, err := c.Ask(context.Background(), 1)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if ex.Text() != "Vacation?" {
		t.Errorf("Text() = %q", ex.Text())
	}
	reply, callErr := ex.Call()
	c.Resolve(ex, reply, callErr)

	if _, err := c.Ask(context.Background(), 5); !errors.Is(err, ErrQuestionOutOfRange) {
		t.Errorf("Ask(5) error = %v, want ErrQuestionOutOfRange", err)
	}
	if _, err := c.Ask(context.Background(), -1); !errors.Is(err, ErrQuestionOutOfRange) {
		t.Errorf("Ask(-1) error = %v, want ErrQuestionOutOfRange", err)
	}
}

func TestQuickQuestions_Default(t *testing.T) {
	qs := New(&fakeBackend{}).QuickQuestions()
	if len(qs) != len(models.DefaultQuickQuestions) {
		t.Fatalf("QuickQuestions() = %d entries", len(qs))
	}
	if qs[0] != "How many sick days do I have?" {
		t.Errorf("first question = %q", qs[0])
	}
}

func TestWithFormatter_Markdown(t *testing.T) {
	c := New(&fakeBackend{reply: "**Hi!**\n- one"}, WithFormatter(format.New(format.WithDialect(format.Markdown))))

	msg, _ := c.Exchange(context.Background(), "Hello")
	if msg.Content != "**Hi!**\n\n- one" {
		t.Errorf("Content = %q", msg.Content)
	}
}

func TestLastReply(t *testing.T) {
	c := New(&fakeBackend{reply: "Hi"})

	if _, ok := c.LastReply(); ok {
		t.Error("the seed is not a reply")
	}
	c.Exchange(context.Background(), "Hello")
	if msg, ok := c.LastReply(); !ok || msg.Raw != "Hi" {
		t.Errorf("LastReply() = %+v, %v", msg, ok)
	}
}

func TestSnapshot_IsolatedCopy(t *testing.T) {
	c := New(&fakeBackend{})
	snap := c.Snapshot()
	snap.Messages[0].Content = "mutated"

	if c.Last().Content == "mutated" {
		t.Error("Snapshot() must return a copy")
	}
}

func TestState_String(t *testing.T) {
	if Idle.String() != "idle" || Pending.String() != "pending" {
		t.Errorf("String() = %q, %q", Idle.String(), Pending.String())
	}
}
