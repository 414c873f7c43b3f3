package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository/memory"
)

func TestUpdateProfile_MergesNonEmptyFields(t *testing.T) {
	repo := memory.NewAgentRepository(domain.Agent{
		ID:           "a1",
		Name:         "Anna",
		Email:        "anna@realty.io",
		Region:       "Moscow",
		PasswordHash: "hash",
	})
	uc := New(repo, nil)

	updated, err := uc.UpdateProfile(context.Background(), "a1", domain.AgentPatch{
		Phone:        "+7 900 000-00-00",
		PersonalLink: "https://realty.io/anna",
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.Name)
	assert.Equal(t, "Moscow", updated.Region)
	assert.Equal(t, "+7 900 000-00-00", updated.Phone)

	stored, err := uc.GetProfile(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "https://realty.io/anna", stored.PersonalLink)
	assert.Equal(t, "hash", stored.PasswordHash)
}

func TestUpdateProfile_Errors(t *testing.T) {
	uc := New(memory.NewAgentRepository(domain.Agent{ID: "a1", Name: "Anna"}), nil)

	_, err := uc.UpdateProfile(context.Background(), "missing", domain.AgentPatch{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)

	_, err = uc.UpdateProfile(context.Background(), "a1", domain.AgentPatch{Email: "nope", PersonalLink: "realty.io"})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.UpdateProfile(context.Background(), "a1", domain.AgentPatch{Region: "atlantis"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	updated, err := uc.UpdateProfile(context.Background(), "a1", domain.AgentPatch{Region: "2"})
	require.NoError(t, err)
	assert.Equal(t, "saint-petersburg", updated.Region)
}

func TestChangePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := memory.NewAgentRepository(domain.Agent{ID: "a1", Name: "Anna", PasswordHash: string(hash)})
	uc := New(repo, nil).WithHashCost(bcrypt.MinCost)
	ctx := context.Background()

	err = uc.ChangePassword(ctx, "a1", "wrong-horse", "battery-staple")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	err = uc.ChangePassword(ctx, "a1", "correct-horse", "short")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, uc.ChangePassword(ctx, "a1", "correct-horse", "battery-staple"))
	stored, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("battery-staple")))

	err = uc.ChangePassword(ctx, "missing", "correct-horse", "battery-staple")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}
