package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/realty/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"

	headerRequestID    = "X-Request-ID"
	headerAgentID      = "X-Agent-ID"
	headerSessionID    = "X-Session-ID"
	headerForwardedFor = "X-Forwarded-For"
	headerRealIP       = "X-Real-IP"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
// Identity headers must come from the auth middleware, which rewrites them on every request.
type Adapter struct {
	timeout      time.Duration
	trustProxies bool
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// TrustProxies makes the adapter take the client address from X-Forwarded-For / X-Real-IP.
func (a *Adapter) TrustProxies(trust bool) *Adapter {
	a.trustProxies = trust
	return a
}

// Timeout is the default per-request deadline.
func (a *Adapter) Timeout() time.Duration {
	return a.timeout
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return a.AttachWithTimeout(ctx, a.timeout)
}

// AttachWithTimeout is Attach with a per-route deadline, used by routes that wait on slow gateways.
func (a *Adapter) AttachWithTimeout(ctx *fasthttp.RequestCtx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = a.timeout
	}
	stdCtx, cancel := context.WithTimeout(context.Background(), timeout)

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set(headerRequestID, reqID)

	if agentID := string(ctx.Request.Header.Peek(headerAgentID)); agentID != "" {
		stdCtx = appLogger.ContextWithAgentID(stdCtx, agentID)
	}
	if sessionID := string(ctx.Request.Header.Peek(headerSessionID)); sessionID != "" {
		stdCtx = appLogger.ContextWithSessionID(stdCtx, sessionID)
	}
	if addr := a.clientAddr(ctx); addr != "" {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, addr)
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

func (a *Adapter) clientAddr(ctx *fasthttp.RequestCtx) string {
	if a.trustProxies {
		if fwd := string(ctx.Request.Header.Peek(headerForwardedFor)); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if realIP := strings.TrimSpace(string(ctx.Request.Header.Peek(headerRealIP))); realIP != "" {
			return realIP
		}
	}
	if remote := ctx.RemoteAddr(); remote != nil {
		return remote.String()
	}
	return ""
}

// RemoteAddr returns the client address recorded by Attach.
func RemoteAddr(ctx context.Context) string {
	v, _ := ctx.Value(KeyRemoteAddr).(string)
	return v
}

// UserAgent returns the client user agent recorded by Attach.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(KeyUserAgent).(string)
	return v
}

func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek(headerRequestID)); strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}
