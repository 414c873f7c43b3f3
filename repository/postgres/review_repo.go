package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository instantiates the Postgres-backed admin queue.
func NewReviewRepository(pool *pgxpool.Pool) repository.ReviewRepository {
	return &reviewRepository{pool: pool}
}

const proposalColumns = `
	id, first_name, last_name, email, COALESCE(phone, ''), COALESCE(telegram, ''), COALESCE(whatsapp, ''),
	COALESCE(preferred_contact, ''), COALESCE(experience, ''), status, COALESCE(rejection_reason, ''),
	submitted_at, processed_at
`

func scanProposal(row pgx.Row) (*domain.Proposal, error) {
	var p domain.Proposal
	if err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.Telegram,
		&p.WhatsApp,
		&p.PreferredContact,
		&p.Experience,
		&p.Status,
		&p.RejectionReason,
		&p.SubmittedAt,
		&p.ProcessedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *reviewRepository) ListProposals(ctx context.Context, filter repository.ReviewFilter) ([]domain.Proposal, error) {
	limit, offset := pageArgs(filter.Limit, filter.Offset)
	query := `SELECT ` + proposalColumns + `
		FROM agent_proposals
		WHERE ($1 = '' OR status = $1)
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, filter.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Proposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *reviewRepository) GetProposal(ctx context.Context, id string) (*domain.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM agent_proposals WHERE id = $1`
	p, err := scanProposal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *reviewRepository) SaveProposal(ctx context.Context, p *domain.Proposal) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO agent_proposals (id, first_name, last_name, email, phone, telegram, whatsapp,
		preferred_contact, experience, status, rejection_reason, submitted_at, processed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, NOW()), $13)
	ON CONFLICT (id) DO UPDATE
	SET status = EXCLUDED.status,
		rejection_reason = EXCLUDED.rejection_reason,
		processed_at = EXCLUDED.processed_at
	RETURNING submitted_at;
	`
	return r.pool.QueryRow(ctx, query,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Email,
		nullString(p.Phone),
		nullString(p.Telegram),
		nullString(p.WhatsApp),
		nullString(p.PreferredContact),
		nullString(p.Experience),
		p.Status,
		nullString(p.RejectionReason),
		nullTime(p.SubmittedAt),
		nullTimePtr(p.ProcessedAt),
	).Scan(&p.SubmittedAt)
}

const claimColumns = `
	id, COALESCE(agent_id, ''), author_name, title, content, status, COALESCE(response, ''),
	submitted_at, answered_at, closed_at
`

func scanClaim(row pgx.Row) (*domain.Claim, error) {
	var c domain.Claim
	if err := row.Scan(
		&c.ID,
		&c.AgentID,
		&c.AuthorName,
		&c.Title,
		&c.Content,
		&c.Status,
		&c.Response,
		&c.SubmittedAt,
		&c.AnsweredAt,
		&c.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *reviewRepository) ListClaims(ctx context.Context, filter repository.ReviewFilter) ([]domain.Claim, error) {
	limit, offset := pageArgs(filter.Limit, filter.Offset)
	query := `SELECT ` + claimColumns + `
		FROM agent_claims
		WHERE ($1 = '' OR status = $1)
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, filter.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Claim, 0)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *reviewRepository) GetClaim(ctx context.Context, id string) (*domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM agent_claims WHERE id = $1`
	c, err := scanClaim(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *reviewRepository) SaveClaim(ctx context.Context, c *domain.Claim) error {
	if c == nil || c.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO agent_claims (id, agent_id, author_name, title, content, status, response,
		submitted_at, answered_at, closed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()), $9, $10)
	ON CONFLICT (id) DO UPDATE
	SET status = EXCLUDED.status,
		response = EXCLUDED.response,
		answered_at = EXCLUDED.answered_at,
		closed_at = EXCLUDED.closed_at
	RETURNING submitted_at;
	`
	return r.pool.QueryRow(ctx, query,
		c.ID,
		nullString(c.AgentID),
		c.AuthorName,
		c.Title,
		c.Content,
		c.Status,
		nullString(c.Response),
		nullTime(c.SubmittedAt),
		nullTimePtr(c.AnsweredAt),
		nullTimePtr(c.ClosedAt),
	).Scan(&c.SubmittedAt)
}

func (r *reviewRepository) Stats(ctx context.Context) (domain.ReviewStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM agent_proposals WHERE status = 'pending'),
			(SELECT COUNT(*) FROM agent_proposals WHERE status = 'approved'),
			(SELECT COUNT(*) FROM agent_proposals WHERE status = 'rejected'),
			(SELECT COUNT(*) FROM agent_claims WHERE status = 'open'),
			(SELECT COUNT(*) FROM agent_claims WHERE status = 'answered'),
			(SELECT COUNT(*) FROM agent_claims WHERE status = 'closed')
	`
	var s domain.ReviewStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.PendingProposals,
		&s.ApprovedProposals,
		&s.RejectedProposals,
		&s.OpenClaims,
		&s.AnsweredClaims,
		&s.ClosedClaims,
	)
	return s, err
}
