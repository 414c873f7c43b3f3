package review

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

type UseCase struct {
	reviews repository.ReviewRepository
	now     func() time.Time
	logger  *zap.Logger
}

func New(reviews repository.ReviewRepository, clock func() time.Time, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &UseCase{
		reviews: reviews,
		now:     clock,
		logger:  logger,
	}
}

func (uc *UseCase) ListProposals(ctx context.Context, filter repository.ReviewFilter) ([]domain.Proposal, error) {
	return uc.reviews.ListProposals(ctx, filter)
}

func (uc *UseCase) ListClaims(ctx context.Context, filter repository.ReviewFilter) ([]domain.Claim, error) {
	return uc.reviews.ListClaims(ctx, filter)
}

func (uc *UseCase) Approve(ctx context.Context, id string) (*domain.Proposal, error) {
	p, err := uc.reviews.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.ProposalPending {
		return nil, domain.NewError(domain.ErrCodeConflict, "proposal already processed")
	}
	now := uc.now()
	p.Status = domain.ProposalApproved
	p.ProcessedAt = &now
	if err := uc.reviews.SaveProposal(ctx, p); err != nil {
		return nil, err
	}
	uc.logger.Info("proposal approved", zap.String("proposal_id", id))
	return p, nil
}

func (uc *UseCase) Reject(ctx context.Context, id, reason string) (*domain.Proposal, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		verr := &domain.ValidationError{}
		verr.Missing("reason")
		return nil, verr
	}
	p, err := uc.reviews.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.ProposalPending {
		return nil, domain.NewError(domain.ErrCodeConflict, "proposal already processed")
	}
	now := uc.now()
	p.Status = domain.ProposalRejected
	p.RejectionReason = reason
	p.ProcessedAt = &now
	if err := uc.reviews.SaveProposal(ctx, p); err != nil {
		return nil, err
	}
	uc.logger.Info("proposal rejected", zap.String("proposal_id", id))
	return p, nil
}

func (uc *UseCase) Answer(ctx context.Context, id, response string) (*domain.Claim, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		verr := &domain.ValidationError{}
		verr.Missing("response")
		return nil, verr
	}
	c, err := uc.reviews.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.ClaimClosed {
		return nil, domain.NewError(domain.ErrCodeConflict, "claim is closed")
	}
	now := uc.now()
	c.Status = domain.ClaimAnswered
	c.Response = response
	c.AnsweredAt = &now
	if err := uc.reviews.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	uc.logger.Info("claim answered", zap.String("claim_id", id))
	return c, nil
}

// Close is idempotent: closing a closed claim keeps the original close time.
func (uc *UseCase) Close(ctx context.Context, id string) (*domain.Claim, error) {
	c, err := uc.reviews.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.ClaimClosed {
		return c, nil
	}
	now := uc.now()
	c.Status = domain.ClaimClosed
	c.ClosedAt = &now
	if err := uc.reviews.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	uc.logger.Info("claim closed", zap.String("claim_id", id))
	return c, nil
}

func (uc *UseCase) Stats(ctx context.Context) (domain.ReviewStats, error) {
	return uc.reviews.Stats(ctx)
}
