package repository

import (
	"context"

	"github.com/fastygo/realty/domain"
)

type ReviewFilter struct {
	Status string
	Limit  int
	Offset int
}

// ReviewRepository persists the admin queue. Get* return a NotFound domain error on miss.
type ReviewRepository interface {
	ListProposals(ctx context.Context, filter ReviewFilter) ([]domain.Proposal, error)
	GetProposal(ctx context.Context, id string) (*domain.Proposal, error)
	SaveProposal(ctx context.Context, proposal *domain.Proposal) error

	ListClaims(ctx context.Context, filter ReviewFilter) ([]domain.Claim, error)
	GetClaim(ctx context.Context, id string) (*domain.Claim, error)
	SaveClaim(ctx context.Context, claim *domain.Claim) error

	Stats(ctx context.Context) (domain.ReviewStats, error)
}
