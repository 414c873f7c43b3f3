package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates a Postgres-backed agent profile repository.
func NewAgentRepository(pool *pgxpool.Pool) repository.AgentRepository {
	return &agentRepository{pool: pool}
}

const agentColumns = `
	id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(region, ''), COALESCE(avatar, ''),
	COALESCE(personal_link, ''), role, COALESCE(password_hash, ''), status, created_at, updated_at
`

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var agent domain.Agent
	if err := row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.Phone,
		&agent.Region,
		&agent.Avatar,
		&agent.PersonalLink,
		&agent.Role,
		&agent.PasswordHash,
		&agent.Status,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`
	return scanAgent(r.pool.QueryRow(ctx, query, id))
}

func (r *agentRepository) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE lower(email) = $1`
	return scanAgent(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// Upsert inserts or updates the profile. An empty password hash keeps the stored one.
func (r *agentRepository) Upsert(ctx context.Context, agent *domain.Agent) error {
	if agent == nil || agent.ID == "" {
		return domain.ErrInvalidPayload
	}
	if agent.Role == "" {
		agent.Role = domain.RoleAgent
	}
	if agent.Status == "" {
		agent.Status = "active"
	}

	const query = `
	INSERT INTO agents (id, name, email, phone, region, avatar, personal_link, role, password_hash, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		region = EXCLUDED.region,
		avatar = EXCLUDED.avatar,
		personal_link = EXCLUDED.personal_link,
		role = EXCLUDED.role,
		password_hash = COALESCE(EXCLUDED.password_hash, agents.password_hash),
		status = EXCLUDED.status,
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`

	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		agent.ID,
		agent.Name,
		nullString(strings.ToLower(agent.Email)),
		nullString(agent.Phone),
		nullString(agent.Region),
		nullString(agent.Avatar),
		nullString(agent.PersonalLink),
		agent.Role,
		nullString(agent.PasswordHash),
		agent.Status,
		nullTime(agent.CreatedAt),
	).Scan(&createdAt, &updatedAt); err != nil {
		return err
	}

	agent.CreatedAt = createdAt
	agent.UpdatedAt = updatedAt
	return nil
}
