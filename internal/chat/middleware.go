package chat

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// BackendFunc adapts a function to Backend
type BackendFunc func(ctx context.Context, message string) (string, error)

// Send calls f
func (f BackendFunc) Send(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// Middleware wraps a Backend to add behavior around every request.
// Wrap must call next to continue the chain; returning without calling it
// short-circuits the request.
type Middleware interface {
	Name() string
	Wrap(next Backend) Backend
}

// MiddlewareChain applies middlewares in order: the first added is the
// outermost wrapper.
type MiddlewareChain struct {
	middlewares []Middleware
}

// NewMiddlewareChain creates a chain of the given middlewares
func NewMiddlewareChain(middlewares ...Middleware) *MiddlewareChain {
	return &MiddlewareChain{middlewares: middlewares}
}

// Add appends a middleware and returns the chain
func (c *MiddlewareChain) Add(mw Middleware) *MiddlewareChain {
	c.middlewares = append(c.middlewares, mw)
	return c
}

// Len returns the number of middlewares in the chain
func (c *MiddlewareChain) Len() int {
	return len(c.middlewares)
}

// Names returns the middleware names, outermost first
func (c *MiddlewareChain) Names() []string {
	names := make([]string, len(c.middlewares))
	for i, mw := range c.middlewares {
		names[i] = mw.Name()
	}
	return names
}

// Wrap applies the chain to b
func (c *MiddlewareChain) Wrap(b Backend) Backend {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		b = c.middlewares[i].Wrap(b)
	}
	return b
}

// MiddlewareFunc is a Middleware built from a function
type MiddlewareFunc struct {
	name string
	fn   func(next Backend) Backend
}

// NewMiddlewareFunc creates a named middleware from fn
func NewMiddlewareFunc(name string, fn func(next Backend) Backend) *MiddlewareFunc {
	return &MiddlewareFunc{name: name, fn: fn}
}

// Name returns the middleware name
func (m *MiddlewareFunc) Name() string {
	return m.name
}

// Wrap applies fn; a nil fn leaves next unchanged
func (m *MiddlewareFunc) Wrap(next Backend) Backend {
	if m.fn == nil {
		return next
	}
	return m.fn(next)
}

// PanicError reports a panic recovered from a backend
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("backend panicked: %v", e.Value)
}

// RecoveryMiddleware turns a panicking backend into a failed request
type RecoveryMiddleware struct {
	includeStack bool
}

// NewRecoveryMiddleware creates a recovery middleware
func NewRecoveryMiddleware(includeStack bool) *RecoveryMiddleware {
	return &RecoveryMiddleware{includeStack: includeStack}
}

func (m *RecoveryMiddleware) Name() string {
	return "recovery"
}

func (m *RecoveryMiddleware) Wrap(next Backend) Backend {
	return BackendFunc(func(ctx context.Context, message string) (reply string, err error) {
		defer func() {
			if r := recover(); r != nil {
				pe := &PanicError{Value: r}
				if m.includeStack {
					pe.Stack = string(debug.Stack())
				}
				reply, err = "", pe
			}
		}()
		return next.Send(ctx, message)
	})
}

// ContextCheckMiddleware fails fast when the request context is already done
type ContextCheckMiddleware struct{}

func NewContextCheckMiddleware() *ContextCheckMiddleware {
	return &ContextCheckMiddleware{}
}

func (m *ContextCheckMiddleware) Name() string {
	return "context-check"
}

func (m *ContextCheckMiddleware) Wrap(next Backend) Backend {
	return BackendFunc(func(ctx context.Context, message string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("request cancelled before sending: %w", err)
		}
		return next.Send(ctx, message)
	})
}

// LoggingMiddleware logs every request at debug level
type LoggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware creates a logging middleware; nil discards
func NewLoggingMiddleware(logger *slog.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoggingMiddleware{logger: logger}
}

func (m *LoggingMiddleware) Name() string {
	return "logging"
}

func (m *LoggingMiddleware) Wrap(next Backend) Backend {
	return BackendFunc(func(ctx context.Context, message string) (string, error) {
		m.logger.DebugContext(ctx, "sending message", "chars", len([]rune(message)))

		start := time.Now()
		reply, err := next.Send(ctx, message)
		elapsed := time.Since(start).Round(time.Millisecond)

		if err != nil {
			m.logger.DebugContext(ctx, "message failed", "duration", elapsed, "error", err)
		} else {
			m.logger.DebugContext(ctx, "reply received", "duration", elapsed, "chars", len([]rune(reply)))
		}
		return reply, err
	})
}

var (
	_ Middleware = (*MiddlewareFunc)(nil)
	_ Middleware = (*RecoveryMiddleware)(nil)
	_ Middleware = (*ContextCheckMiddleware)(nil)
	_ Middleware = (*LoggingMiddleware)(nil)
)
