package router

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/fasthttp/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/realty/api/handler"
	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/internal/infrastructure/monitor"
	"github.com/fastygo/realty/internal/middleware"
	"github.com/fastygo/realty/repository/memory"
	authUC "github.com/fastygo/realty/usecase/auth"
	profileUC "github.com/fastygo/realty/usecase/profile"
	reviewUC "github.com/fastygo/realty/usecase/review"
	"github.com/fastygo/realty/usecase/subscription"
	"github.com/fastygo/realty/usecase/workspace"
)

type stubVerifier map[string]*domain.Session

func (v stubVerifier) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	if s, ok := v[token]; ok {
		return s, nil
	}
	return nil, domain.ErrUnauthorized
}

func newTestRouter(t *testing.T) *router.Router {
	t.Helper()
	agents := memory.NewAgentRepository()
	auth := authUC.New(agents, memory.NewSessionRepository(time.Hour), authUC.Options{
		Secret:   "router-test",
		HashCost: bcrypt.MinCost,
	}, nil)
	registry := workspace.NewRegistry(func(agentID string) *workspace.Workspace {
		return workspace.New(workspace.Deps{
			Listings: memory.NewListingRepository(memory.ListingOptions{}),
		}, workspace.Options{
			AgentID: agentID,
			Subscription: subscription.Options{
				Account: &domain.SubscriptionAccount{Status: domain.SubscriptionActive},
			},
		}, nil)
	})

	handlers := Handlers{
		Auth:         apiHandler.NewAuthHandler(auth, nil, nil),
		Profile:      apiHandler.NewProfileHandler(profileUC.New(agents, nil), nil, nil),
		Listing:      apiHandler.NewListingHandler(registry, 0, nil, nil),
		Subscription: apiHandler.NewSubscriptionHandler(registry, time.Second, nil, nil),
		Geocode:      apiHandler.NewGeocodeHandler(registry, nil, nil),
		Regions:      apiHandler.NewRegionHandler(nil, nil),
		Admin:        apiHandler.NewAdminHandler(reviewUC.New(memory.NewReviewRepository(nil, nil), nil, nil), nil, nil),
		Health:       apiHandler.NewHealthHandler(monitor.New(monitor.Deps{}, time.Minute, nil), nil, nil),
		Metrics: func(ctx *fasthttp.RequestCtx) {
			ctx.SetBodyString("# metrics")
		},
	}
	verifier := stubVerifier{
		"agent-token": {ID: "s1", AgentID: "agent-1", Role: domain.RoleAgent},
		"admin-token": {ID: "s2", AgentID: "admin-1", Role: domain.RoleAdmin},
	}
	return New(handlers, middleware.Auth(verifier, time.Second, nil))
}

func request(r *router.Router, method, path, token, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	r.Handler(ctx)
	return ctx
}

func TestRoutes_Access(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{"listings need a token", "GET", "/api/v1/listings", "", "", http.StatusUnauthorized},
		{"listings with token", "GET", "/api/v1/listings", "agent-token", "", http.StatusOK},
		{"unknown token", "GET", "/api/v1/subscription", "forged", "", http.StatusUnauthorized},
		{"subscription", "GET", "/api/v1/subscription", "agent-token", "", http.StatusOK},
		{"admin route refuses agents", "GET", "/api/v1/admin/stats", "agent-token", "", http.StatusForbidden},
		{"admin route for admins", "GET", "/api/v1/admin/stats", "admin-token", "", http.StatusOK},
		{"register is public", "POST", "/api/v1/auth/register", "", `{"name":"Anna","email":"anna@realty.io","password":"correct-horse"}`, http.StatusCreated},
		{"showings path", "DELETE", "/api/v1/listings/1/showings/2", "agent-token", "", http.StatusNoContent},
		{"regions", "GET", "/api/v1/regions", "agent-token", "", http.StatusOK},
		{"region by slug", "GET", "/api/v1/regions/kazan", "agent-token", "", http.StatusOK},
		{"unknown region", "GET", "/api/v1/regions/atlantis", "agent-token", "", http.StatusNotFound},
		{"forward lookup is a GET", "POST", "/api/v1/geocode/forward", "agent-token", "", http.StatusMethodNotAllowed},
		{"metrics", "GET", "/metrics", "", "", http.StatusOK},
		{"unknown route", "GET", "/api/v1/tasks", "agent-token", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := request(r, tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, ctx.Response.StatusCode(), string(ctx.Response.Body()))
		})
	}
}

func TestRoutes_SaveMatchedTemplate(t *testing.T) {
	r := newTestRouter(t)

	ctx := request(r, "GET", "/api/v1/listings/42", "agent-token", "")
	require.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, "/api/v1/listings/{id}", ctx.UserValue(router.MatchedRoutePathParam))
}

func TestRoutes_SpoofedIdentityIsDropped(t *testing.T) {
	r := newTestRouter(t)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("GET")
	ctx.Request.SetRequestURI("/api/v1/admin/stats")
	ctx.Request.Header.Set("Authorization", "Bearer agent-token")
	ctx.Request.Header.Set(middleware.HeaderAgentRole, string(domain.RoleAdmin))
	r.Handler(ctx)

	assert.Equal(t, http.StatusForbidden, ctx.Response.StatusCode())
}
