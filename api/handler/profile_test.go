package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository/memory"
	profileUC "github.com/fastygo/realty/usecase/profile"
)

func TestProfileHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	agents := memory.NewAgentRepository(domain.Agent{
		ID: testAgent, Name: "Anna", Email: "anna@realty.io", PasswordHash: string(hash), Status: "active",
	})
	h := NewProfileHandler(profileUC.New(agents, nil).WithHashCost(bcrypt.MinCost), nil, nil)

	ctx := serve(h.GetProfile, call{method: "GET"})
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())

	ctx = serve(h.GetProfile, call{method: "GET", agent: testAgent})
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.NotContains(t, string(ctx.Response.Body()), "password")

	ctx = serve(h.UpdateProfile, call{method: "PUT", agent: testAgent, body: `{"region":"Kazan"}`})
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(decodeEnvelope(t, ctx).Data), `"region":"kazan"`)

	ctx = serve(h.UpdateProfile, call{method: "PUT", agent: testAgent, body: `{"region":"atlantis"}`})
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = serve(h.UpdateProfile, call{method: "PUT", agent: testAgent, body: `{"personal_link":"not a url"}`})
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = serve(h.ChangePassword, call{method: "PUT", agent: testAgent, body: `{"new_password":"battery-staple"}`})
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = serve(h.ChangePassword, call{method: "PUT", agent: testAgent, body: `{"current_password":"nope","new_password":"battery-staple"}`})
	assert.Equal(t, http.StatusForbidden, ctx.Response.StatusCode())

	ctx = serve(h.ChangePassword, call{method: "PUT", agent: testAgent, body: `{"current_password":"correct-horse","new_password":"battery-staple"}`})
	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())
}
