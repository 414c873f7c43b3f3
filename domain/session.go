package domain

import "time"

// Session is a login of one agent. The access token embeds its ID; revoking the session voids the token.
type Session struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id"`
	Role      Role      `json:"role"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}
