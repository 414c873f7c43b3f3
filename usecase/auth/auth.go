package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

const (
	DefaultTTL        = 24 * time.Hour
	minPasswordLength = 8
	tokenType         = "Bearer"
)

// Claims is the payload of an access token. The session id ties the token to a revocable session.
type Claims struct {
	AgentID   string      `json:"user_id"`
	SessionID string      `json:"session_id"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens is returned on login and refresh.
type Tokens struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Session     *domain.Session `json:"session"`
	Agent       *domain.Agent   `json:"agent,omitempty"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Region   string
	Role     domain.Role
}

type Options struct {
	Secret string
	Issuer string
	TTL    time.Duration
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

type UseCase struct {
	agents   repository.AgentRepository
	sessions repository.SessionRepository
	secret   []byte
	issuer   string
	ttl      time.Duration
	cost     int
	logger   *zap.Logger
}

func New(agents repository.AgentRepository, sessions repository.SessionRepository, opts Options, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &UseCase{
		agents:   agents,
		sessions: sessions,
		secret:   []byte(opts.Secret),
		issuer:   opts.Issuer,
		ttl:      opts.TTL,
		cost:     opts.HashCost,
		logger:   logger,
	}
}

// Register creates an agent account with a hashed password.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.Agent, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.Missing("name")
	}
	if in.Email == "" {
		verr.Missing("email")
	}
	if in.Password == "" {
		verr.Missing("password")
	} else if len(in.Password) < minPasswordLength {
		verr.Invalidf("password must be at least %d characters", minPasswordLength)
	}
	region, _ := domain.LookupRegion(strconv.Itoa(domain.DefaultRegionID))
	if in.Region != "" {
		var ok bool
		if region, ok = domain.LookupRegion(in.Region); !ok {
			verr.Invalidf("unknown region %q", in.Region)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := uc.agents.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.NewError(domain.ErrCodeConflict, "email already registered")
	} else if !errors.Is(err, domain.ErrAgentNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleAgent
	}
	agent := &domain.Agent{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Phone:        in.Phone,
		Region:       region.Slug,
		Role:         role,
		PasswordHash: string(hash),
		Status:       "active",
	}
	if err := uc.agents.Upsert(ctx, agent); err != nil {
		return nil, err
	}
	uc.logger.Info("agent registered", zap.String("agent_id", agent.ID), zap.String("role", string(role)))
	return agent, nil
}

// EnsureAgent registers in unless an account with the same email exists. The bool reports creation.
func (uc *UseCase) EnsureAgent(ctx context.Context, in RegisterInput) (*domain.Agent, bool, error) {
	existing, err := uc.agents.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrAgentNotFound) {
		return nil, false, err
	}
	agent, err := uc.Register(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return agent, true, nil
}

// Login checks the credentials and opens a new session.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*Tokens, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		verr := &domain.ValidationError{}
		if strings.TrimSpace(email) == "" {
			verr.Missing("email")
		}
		if password == "" {
			verr.Missing("password")
		}
		return nil, verr
	}

	agent, err := uc.agents.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAgentNotFound) {
			uc.logger.Info("login attempt for unknown email")
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if agent.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(password)) != nil {
		uc.logger.Info("login rejected", zap.String("agent_id", agent.ID))
		return nil, domain.ErrUnauthorized
	}
	if !agent.IsActive() {
		return nil, domain.NewError(domain.ErrCodeForbidden, "agent account is disabled")
	}

	session, err := uc.CreateSession(ctx, agent)
	if err != nil {
		return nil, err
	}
	tokens, err := uc.issue(session)
	if err != nil {
		return nil, err
	}
	tokens.Agent = agent
	uc.logger.Info("agent logged in", zap.String("agent_id", agent.ID), zap.String("session_id", session.ID))
	return tokens, nil
}

func (uc *UseCase) CreateSession(ctx context.Context, agent *domain.Agent) (*domain.Session, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		AgentID:   agent.ID,
		Role:      agent.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Authenticate verifies the token signature and that its session is still open.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.ParseToken(token)
	if err != nil {
		return nil, err
	}
	session, err := uc.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.AgentID != claims.AgentID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// ParseToken checks the signature and expiry of an access token.
func (uc *UseCase) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return uc.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	if claims.SessionID == "" || claims.AgentID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Refresh extends the session and issues a fresh token for it.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*Tokens, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	expiresAt, err := uc.sessions.Touch(ctx, sessionID, uc.ttl)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = expiresAt
	return uc.issue(session)
}

// Logout revokes the session, or every session of its agent when everywhere is set.
func (uc *UseCase) Logout(ctx context.Context, session *domain.Session, everywhere bool) (int, error) {
	if session == nil {
		return 0, domain.ErrSessionNotFound
	}
	if everywhere {
		n, err := uc.sessions.DeleteAll(ctx, session.AgentID)
		if err != nil {
			return 0, err
		}
		uc.logger.Info("all sessions revoked", zap.String("agent_id", session.AgentID), zap.Int("count", n))
		return n, nil
	}
	if err := uc.sessions.Delete(ctx, session.ID); err != nil {
		return 0, err
	}
	return 1, nil
}

func (uc *UseCase) issue(session *domain.Session) (*Tokens, error) {
	claims := Claims{
		AgentID:   session.AgentID,
		SessionID: session.ID,
		Role:      session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uc.issuer,
			Subject:   session.AgentID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &Tokens{
		AccessToken: signed,
		TokenType:   tokenType,
		ExpiresAt:   session.ExpiresAt,
		Session:     session,
	}, nil
}
