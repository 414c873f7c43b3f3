package repository

import (
	"context"

	"github.com/fastygo/realty/domain"
)

type AgentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetByEmail(ctx context.Context, email string) (*domain.Agent, error)
	Upsert(ctx context.Context, agent *domain.Agent) error
}
