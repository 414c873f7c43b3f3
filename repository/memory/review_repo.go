package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

type reviewRepository struct {
	mu        sync.RWMutex
	proposals map[string]domain.Proposal
	claims    map[string]domain.Claim
}

// NewReviewRepository returns an in-process admin queue, used in development and tests.
func NewReviewRepository(proposals []domain.Proposal, claims []domain.Claim) repository.ReviewRepository {
	r := &reviewRepository{
		proposals: make(map[string]domain.Proposal, len(proposals)),
		claims:    make(map[string]domain.Claim, len(claims)),
	}
	for _, p := range proposals {
		r.proposals[p.ID] = p
	}
	for _, c := range claims {
		r.claims[c.ID] = c
	}
	return r
}

func (r *reviewRepository) ListProposals(_ context.Context, filter repository.ReviewFilter) ([]domain.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Proposal, 0, len(r.proposals))
	for _, p := range r.proposals {
		if filter.Status == "" || string(p.Status) == filter.Status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return page(out, filter), nil
}

func (r *reviewRepository) GetProposal(_ context.Context, id string) (*domain.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	return &p, nil
}

func (r *reviewRepository) SaveProposal(_ context.Context, proposal *domain.Proposal) error {
	if proposal == nil || proposal.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proposals[proposal.ID] = *proposal
	return nil
}

func (r *reviewRepository) ListClaims(_ context.Context, filter repository.ReviewFilter) ([]domain.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Claim, 0, len(r.claims))
	for _, c := range r.claims {
		if filter.Status == "" || string(c.Status) == filter.Status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return page(out, filter), nil
}

func (r *reviewRepository) GetClaim(_ context.Context, id string) (*domain.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.claims[id]
	if !ok {
		return nil, domain.ErrClaimNotFound
	}
	return &c, nil
}

func (r *reviewRepository) SaveClaim(_ context.Context, claim *domain.Claim) error {
	if claim == nil || claim.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims[claim.ID] = *claim
	return nil
}

func (r *reviewRepository) Stats(_ context.Context) (domain.ReviewStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domain.ReviewStats
	for _, p := range r.proposals {
		switch p.Status {
		case domain.ProposalPending:
			stats.PendingProposals++
		case domain.ProposalApproved:
			stats.ApprovedProposals++
		case domain.ProposalRejected:
			stats.RejectedProposals++
		}
	}
	for _, c := range r.claims {
		switch c.Status {
		case domain.ClaimOpen:
			stats.OpenClaims++
		case domain.ClaimAnswered:
			stats.AnsweredClaims++
		case domain.ClaimClosed:
			stats.ClosedClaims++
		}
	}
	return stats, nil
}

func page[T any](items []T, filter repository.ReviewFilter) []T {
	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return []T{}
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items
}
