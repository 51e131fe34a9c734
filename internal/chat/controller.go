// Package chat owns the conversation transcript and the request lifecycle
// of a single chat widget: optimistic append of the user turn, one backend
// exchange in flight at a time, and a formatted bot turn (or the fallback
// text) once the exchange resolves.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	apierrors "github.com/diogo/hrdesk/internal/errors"
	"github.com/diogo/hrdesk/internal/format"
	"github.com/diogo/hrdesk/internal/models"
)

// Backend sends one user message and returns the raw assistant reply
type Backend interface {
	Send(ctx context.Context, message string) (string, error)
}

// Formatter turns a raw reply into display markup
type Formatter interface {
	Format(raw string) string
}

// Recorder receives every message appended to the transcript
type Recorder interface {
	Record(msg models.Message) error
}

// ErrQuestionOutOfRange is returned by Ask for an unknown quick question
var ErrQuestionOutOfRange = errors.New("quick question out of range")

// State is the controller's lifecycle state
type State int

const (
	Idle State = iota
	Pending
)

// String returns the state name
func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// ConversationState is a point-in-time copy of the transcript
type ConversationState struct {
	Messages []models.Message
	Pending  bool
}

// Exchange is the ticket for one in-flight request. It is issued by Submit
// and handed back to Resolve with the outcome of Call.
type Exchange struct {
	id      uint64
	text    string
	ctx     context.Context
	cancel  context.CancelFunc
	backend Backend
}

// Text returns the trimmed user message being sent
func (e *Exchange) Text() string {
	return e.text
}

// Context returns the request context. It is cancelled by Controller.Cancel
// and once the exchange resolves.
func (e *Exchange) Context() context.Context {
	return e.ctx
}

// Call performs the backend request. It touches no controller state and
// may run on any goroutine.
func (e *Exchange) Call() (string, error) {
	return e.backend.Send(e.ctx, e.text)
}

// Controller owns a conversation. All methods are safe for concurrent use;
// state is only mutated under the controller's lock.
type Controller struct {
	backend   Backend
	formatter Formatter
	recorder  Recorder
	logger    *slog.Logger
	seed      string
	fallback  string
	timeout   time.Duration
	questions []string

	middlewares []Middleware

	mu       sync.Mutex // Protects messages, pending, seq
	messages []models.Message
	pending  *Exchange
	seq      uint64
}

// Option configures a Controller
type Option func(*Controller)

// WithFormatter sets the reply formatter (default: HTML formatter)
func WithFormatter(f Formatter) Option {
	return func(c *Controller) {
		c.formatter = f
	}
}

// WithSeed sets the greeting kept as the first message
func WithSeed(text string) Option {
	return func(c *Controller) {
		if text != "" {
			c.seed = text
		}
	}
}

// WithFallbackText sets the bot turn appended when a request fails
func WithFallbackText(text string) Option {
	return func(c *Controller) {
		if text != "" {
			c.fallback = text
		}
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for failed requests
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder forwards appended messages to r
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithMiddleware wraps the backend; the first middleware is outermost
func WithMiddleware(mws ...Middleware) Option {
	return func(c *Controller) {
		c.middlewares = append(c.middlewares, mws...)
	}
}

// WithQuickQuestions replaces the onboarding questions
func WithQuickQuestions(qs []string) Option {
	return func(c *Controller) {
		if len(qs) > 0 {
			c.questions = append([]string(nil), qs...)
		}
	}
}

// New creates a controller whose transcript holds only the seed message
func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:   backend,
		formatter: format.New(),
		logger:    slog.New(slog.DiscardHandler),
		seed:      models.DefaultSeedMessage,
		fallback:  models.FallbackReply,
		questions: models.QuickQuestions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.middlewares) > 0 {
		c.backend = NewMiddlewareChain(c.middlewares...).Wrap(c.backend)
	}

	c.messages = []models.Message{{
		Content: c.formatter.Format(c.seed),
		Sender:  models.SenderBot,
		Raw:     c.seed,
		SentAt:  time.Now(),
	}}
	return c
}

// Submit appends the user turn and enters Pending. The returned ticket must
// be completed with Call and Resolve. Blank input returns ErrEmptyMessage and
// a submit while another exchange is pending returns ErrExchangePending; in
// both cases nothing changes.
func (c *Controller) Submit(ctx context.Context, text string) (*Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierrors.ErrEmptyMessage
	}

	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return nil, apierrors.ErrExchangePending
	}

	msg := models.Message{
		Content: text,
		Sender:  models.SenderUser,
		SentAt:  time.Now(),
	}
	c.messages = append(c.messages, msg)

	var reqCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}

	c.seq++
	ex := &Exchange{
		id:      c.seq,
		text:    text,
		ctx:     reqCtx,
		cancel:  cancel,
		backend: c.backend,
	}
	c.pending = ex
	c.mu.Unlock()

	c.record(msg)
	return ex, nil
}

// Resolve completes ex with the outcome of its Call. A successful reply is
// formatted; any error is logged and replaced by the fallback text. The
// controller returns to Idle either way. Tickets other than the pending one
// are ignored and report false.
func (c *Controller) Resolve(ex *Exchange, reply string, err error) (models.Message, bool) {
	if ex == nil {
		return models.Message{}, false
	}

	c.mu.Lock()
	if c.pending != ex {
		c.mu.Unlock()
		return models.Message{}, false
	}
	c.pending = nil
	ex.cancel()

	msg := models.Message{
		Sender: models.SenderBot,
		SentAt: time.Now(),
	}
	if err != nil {
		c.logger.Warn("chat request failed",
			"error", err,
			"status", apierrors.GetHTTPStatus(err),
			"endpoint", apierrors.GetEndpoint(err),
			"timeout", apierrors.IsTimeoutError(err),
		)
		msg.Content = c.fallback
	} else {
		msg.Content = c.formatter.Format(reply)
		msg.Raw = reply
	}
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	c.record(msg)
	return msg, true
}

// Exchange submits text and blocks until the reply is appended. Only
// ErrEmptyMessage and ErrExchangePending are returned; request failures
// resolve into the fallback message.
func (c *Controller) Exchange(ctx context.Context, text string) (models.Message, error) {
	ex, err := c.Submit(ctx, text)
	if err != nil {
		return models.Message{}, err
	}
	reply, callErr := ex.Call()
	msg, _ := c.Resolve(ex, reply, callErr)
	return msg, nil
}

// Ask submits the quick question at index
func (c *Controller) Ask(ctx context.Context, index int) (*Exchange, error) {
	if index < 0 || index >= len(c.questions) {
		return nil, fmt.Errorf("%w: %d", ErrQuestionOutOfRange, index)
	}
	return c.Submit(ctx, c.questions[index])
}

// Cancel aborts the pending request, if any. The exchange still resolves
// through Resolve, normally with the fallback text.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return false
	}
	c.pending.cancel()
	return true
}

// Clear truncates the transcript to the seed message. A pending exchange is
// left running.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = c.messages[:1:1]
}

// QuickQuestions returns the onboarding questions
func (c *Controller) QuickQuestions() []string {
	return append([]string(nil), c.questions...)
}

// State returns Pending while an exchange is in flight
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return Pending
	}
	return Idle
}

// Snapshot returns a copy of the conversation state
func (c *Controller) Snapshot() ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConversationState{
		Messages: c.copyMessagesLocked(),
		Pending:  c.pending != nil,
	}
}

// Messages returns a copy of the transcript
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyMessagesLocked()
}

// Len returns the number of messages, seed included
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Last returns the most recent message
func (c *Controller) Last() models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages[len(c.messages)-1]
}

// LastReply returns the most recent bot message after the seed
func (c *Controller) LastReply() (models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i > 0; i-- {
		if c.messages[i].IsBot() {
			return c.messages[i], true
		}
	}
	return models.Message{}, false
}

// View projects the current state for the given input buffer
func (c *Controller) View(input string) View {
	return Project(c.Snapshot(), input)
}

// copyMessagesLocked MUST be called with c.mu held
func (c *Controller) copyMessagesLocked() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) record(msg models.Message) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(msg); err != nil {
		c.logger.Warn("failed to record message", "error", err, "sender", string(msg.Sender))
	}
}
