package repository

import (
	"context"
	"time"

	"github.com/fastygo/realty/domain"
)

// SessionRepository stores login sessions keyed by session id and indexed by agent.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	// Touch moves the expiry of a live session to now+ttl and returns it. A non-positive ttl
	// falls back to the repository default.
	Touch(ctx context.Context, id string, ttl time.Duration) (time.Time, error)
	// DeleteAll revokes every session of an agent and reports how many were removed.
	DeleteAll(ctx context.Context, agentID string) (int, error)
}
