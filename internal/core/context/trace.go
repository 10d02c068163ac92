package context

import (
	"context"

	"github.com/google/uuid"
)

// RequestTrace identifies one API request across log lines and
// downstream calls: the trace ID spans the whole request chain, the
// span ID marks this hop, and the request ID is echoed back to the
// client in X-Request-ID.
type RequestTrace struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceKey struct{}

// WithTrace attaches the request's trace identifiers to the context.
func WithTrace(ctx context.Context, t *RequestTrace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// GetTrace returns the trace attached by the HTTP middleware, or nil
// for background work that never passed through it.
func GetTrace(ctx context.Context) *RequestTrace {
	if t, ok := ctx.Value(traceKey{}).(*RequestTrace); ok {
		return t
	}
	return nil
}

// NewRequestTrace builds a trace for work that did not arrive over
// HTTP, such as the outbox relay, so its log lines still correlate.
func NewRequestTrace() *RequestTrace {
	id := uuid.New().String()
	return &RequestTrace{
		TraceID:   id,
		SpanID:    NewSpanID(),
		RequestID: id,
	}
}

// NewSpanID generates a short span identifier.
func NewSpanID() string {
	return uuid.New().String()[:16]
}
