package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestID_AddsKnownFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithAgentID(ctx, "agent-7")
	ctx = ContextWithSessionID(ctx, "sess-3")
	WithRequestID(ctx, base).Info("listing created")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "agent-7", fields["agent_id"])
	assert.Equal(t, "sess-3", fields["session_id"])
}

func TestWithRequestID_NoFieldsReturnsBase(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, WithRequestID(context.Background(), base))
	assert.Nil(t, WithRequestID(context.Background(), nil))
}

func TestAccessors(t *testing.T) {
	ctx := ContextWithAgentID(ContextWithRequestID(context.Background(), "req-1"), "agent-7")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "agent-7", AgentID(ctx))
	assert.Empty(t, AgentID(context.Background()))
}

func TestNew_FallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "nonsense", Encoding: "console", Service: "realty"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
}
