package httpcontext

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/realty/pkg/logger"
)

func newRequest(headers map[string]string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&fasthttp.Request{}, &net.TCPAddr{IP: net.IPv4(10, 0, 0, 5), Port: 4000}, nil)
	for k, v := range headers {
		ctx.Request.Header.Set(k, v)
	}
	return ctx
}

func TestAttach_PropagatesRequestMetadata(t *testing.T) {
	a := NewAdapter(time.Second)
	req := newRequest(map[string]string{
		"X-Request-ID": "req-42",
		"X-Agent-ID":   "agent-7",
		"User-Agent":   "realtyctl/1.0",
	})

	ctx, cancel := a.Attach(req)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
	assert.Equal(t, "req-42", appLogger.RequestID(ctx))
	assert.Equal(t, "agent-7", appLogger.AgentID(ctx))
	assert.Equal(t, "realtyctl/1.0", UserAgent(ctx))
	assert.Equal(t, "10.0.0.5:4000", RemoteAddr(ctx))
	assert.Equal(t, "req-42", string(req.Response.Header.Peek("X-Request-ID")))
}

func TestAttach_GeneratesRequestID(t *testing.T) {
	req := newRequest(nil)
	ctx, cancel := NewAdapter(0).Attach(req)
	defer cancel()

	id := appLogger.RequestID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, string(req.Response.Header.Peek("X-Request-ID")))
}

func TestAttachWithTimeout_Overrides(t *testing.T) {
	ctx, cancel := NewAdapter(time.Second).AttachWithTimeout(newRequest(nil), time.Minute)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.True(t, time.Until(deadline) > 30*time.Second)
}

func TestClientAddr_ProxyHeaders(t *testing.T) {
	headers := map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}

	ctx, cancel := NewAdapter(time.Second).Attach(newRequest(headers))
	defer cancel()
	assert.Equal(t, "10.0.0.5:4000", RemoteAddr(ctx), "proxy headers ignored by default")

	ctx, cancel = NewAdapter(time.Second).TrustProxies(true).Attach(newRequest(headers))
	defer cancel()
	assert.Equal(t, "203.0.113.9", RemoteAddr(ctx))

	ctx, cancel = NewAdapter(time.Second).TrustProxies(true).Attach(newRequest(map[string]string{"X-Real-IP": "198.51.100.2"}))
	defer cancel()
	assert.Equal(t, "198.51.100.2", RemoteAddr(ctx))
}
