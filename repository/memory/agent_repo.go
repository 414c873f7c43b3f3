package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

type agentRepository struct {
	mu     sync.RWMutex
	agents map[string]domain.Agent
	now    func() time.Time
}

// NewAgentRepository returns an in-process profile store seeded with agents.
func NewAgentRepository(seed ...domain.Agent) repository.AgentRepository {
	r := &agentRepository{agents: make(map[string]domain.Agent, len(seed)), now: time.Now}
	for _, a := range seed {
		r.agents[a.ID] = a
	}
	return r
}

func (r *agentRepository) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return &a, nil
}

func (r *agentRepository) GetByEmail(_ context.Context, email string) (*domain.Agent, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.agents {
		if email != "" && strings.ToLower(a.Email) == email {
			return &a, nil
		}
	}
	return nil, domain.ErrAgentNotFound
}

func (r *agentRepository) Upsert(_ context.Context, agent *domain.Agent) error {
	if agent == nil || agent.ID == "" {
		return domain.ErrInvalidPayload
	}
	if agent.Role == "" {
		agent.Role = domain.RoleAgent
	}
	if agent.Status == "" {
		agent.Status = "active"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if prev, ok := r.agents[agent.ID]; ok {
		agent.CreatedAt = prev.CreatedAt
		if agent.PasswordHash == "" {
			agent.PasswordHash = prev.PasswordHash
		}
	} else if agent.CreatedAt.IsZero() {
		agent.CreatedAt = now
	}
	agent.UpdatedAt = now
	r.agents[agent.ID] = *agent
	return nil
}
