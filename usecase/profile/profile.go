package profile

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

const minPasswordLength = 8

type UseCase struct {
	agents repository.AgentRepository
	cost   int
	logger *zap.Logger
}

func New(agents repository.AgentRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		agents: agents,
		cost:   bcrypt.DefaultCost,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, agentID string) (*domain.Agent, error) {
	return uc.agents.GetByID(ctx, agentID)
}

// UpdateProfile merges patch into the stored profile. Empty patch fields keep their value.
func (uc *UseCase) UpdateProfile(ctx context.Context, agentID string, patch domain.AgentPatch) (*domain.Agent, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}
	agent, err := uc.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	patch.Apply(agent)
	if err := uc.agents.Upsert(ctx, agent); err != nil {
		uc.logger.Error("failed to update profile", zap.String("agent_id", agentID), zap.Error(err))
		return nil, err
	}
	return agent, nil
}

// normalizePatch validates the set fields and rewrites the region to its catalog slug.
func normalizePatch(p domain.AgentPatch) (domain.AgentPatch, error) {
	verr := &domain.ValidationError{}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		verr.Invalidf("email %q is not an address", p.Email)
	}
	if p.PersonalLink != "" {
		if u, err := url.Parse(p.PersonalLink); err != nil || u.Scheme == "" || u.Host == "" {
			verr.Invalidf("personal link %q is not an absolute url", p.PersonalLink)
		}
	}
	if p.Region != "" {
		if r, ok := domain.LookupRegion(p.Region); ok {
			p.Region = r.Slug
		} else {
			verr.Invalidf("unknown region %q", p.Region)
		}
	}
	return p, verr.OrNil()
}

// WithHashCost overrides the bcrypt cost used by ChangePassword.
func (uc *UseCase) WithHashCost(cost int) *UseCase {
	uc.cost = cost
	return uc
}

// ChangePassword replaces the password hash after checking the current password.
// Existing sessions stay valid.
func (uc *UseCase) ChangePassword(ctx context.Context, agentID, current, next string) error {
	if len(next) < minPasswordLength {
		verr := &domain.ValidationError{}
		verr.Invalidf("password must be at least %d characters", minPasswordLength)
		return verr
	}
	agent, err := uc.agents.GetByID(ctx, agentID)
	if err != nil {
		return err
	}
	if agent.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(current)) != nil {
		return domain.NewError(domain.ErrCodeForbidden, "current password does not match")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), uc.cost)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}
	agent.PasswordHash = string(hash)
	if err := uc.agents.Upsert(ctx, agent); err != nil {
		uc.logger.Error("failed to store password", zap.String("agent_id", agentID), zap.Error(err))
		return err
	}
	uc.logger.Info("password changed", zap.String("agent_id", agentID))
	return nil
}
