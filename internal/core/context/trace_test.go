package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceRoundTrip(t *testing.T) {
	trace := &RequestTrace{TraceID: "t-1", SpanID: "s-1", RequestID: "r-1"}
	ctx := WithTrace(context.Background(), trace)

	got := GetTrace(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "t-1", got.TraceID)
	assert.Equal(t, "r-1", got.RequestID)
}

func TestGetTrace_Background(t *testing.T) {
	assert.Nil(t, GetTrace(context.Background()))
}

func TestNewRequestTrace_Correlated(t *testing.T) {
	trace := NewRequestTrace()
	require.NotEmpty(t, trace.TraceID)
	// Background work has no inbound request, so the request ID is the
	// trace ID itself.
	assert.Equal(t, trace.TraceID, trace.RequestID)
	assert.Len(t, trace.SpanID, 16)
}
