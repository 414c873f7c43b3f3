package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/realty/api/transport"
	"github.com/fastygo/realty/domain"
)

const (
	HeaderAgentID   = "X-Agent-ID"
	HeaderAgentRole = "X-Agent-Role"
	HeaderSessionID = "X-Session-ID"
)

// SessionVerifier resolves a bearer token to an open session.
type SessionVerifier interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// Auth rejects requests without a valid bearer token and forwards the session identity
// to handlers through request headers. Client-supplied identity headers are dropped first.
func Auth(verifier SessionVerifier, timeout time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(HeaderAgentID)
			ctx.Request.Header.Del(HeaderAgentRole)
			ctx.Request.Header.Del(HeaderSessionID)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				deny(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "missing bearer token")
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), timeout)
			session, err := verifier.Authenticate(stdCtx, tokenString)
			cancel()
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Debug("rejected token", zap.Error(err))
					deny(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "invalid or expired token")
					return
				}
				logger.Error("session lookup failed", zap.Error(err))
				deny(ctx, fasthttp.StatusServiceUnavailable, domain.ErrCodeUnavailable, "session store unavailable")
				return
			}

			ctx.Request.Header.Set(HeaderAgentID, session.AgentID)
			ctx.Request.Header.Set(HeaderAgentRole, string(session.Role))
			ctx.Request.Header.Set(HeaderSessionID, session.ID)
			next(ctx)
		}
	}
}

// RequireRole lets only sessions with the given role through. It must run after Auth.
func RequireRole(role domain.Role) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if domain.Role(ctx.Request.Header.Peek(HeaderAgentRole)) != role {
				deny(ctx, fasthttp.StatusForbidden, domain.ErrCodeForbidden, "insufficient role")
				return
			}
			next(ctx)
		}
	}
}

func deny(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, message string) {
	body, _ := json.Marshal(transport.NewError(string(code), message, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return header
}
