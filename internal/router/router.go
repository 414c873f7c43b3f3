package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/realty/api/handler"
	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/internal/middleware"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Profile      *apiHandler.ProfileHandler
	Listing      *apiHandler.ListingHandler
	Subscription *apiHandler.SubscriptionHandler
	Geocode      *apiHandler.GeocodeHandler
	Regions      *apiHandler.RegionHandler
	Admin        *apiHandler.AdminHandler
	Health       *apiHandler.HealthHandler
	// Metrics is mounted at /metrics when set.
	Metrics fasthttp.RequestHandler
	// Pprof is mounted under /debug/pprof when set.
	Pprof fasthttp.RequestHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, authMiddleware Middleware) *router.Router {
	r := router.New()
	// metrics label requests by route template
	r.SaveMatchedRoutePath = true

	admin := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return authMiddleware(middleware.RequireRole(domain.RoleAdmin)(h))
	}

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}
	if handlers.Pprof != nil {
		r.ANY("/debug/pprof/{profile:*}", handlers.Pprof)
	}

	v1 := r.Group("/api/v1")

	// Auth routes
	v1.POST("/auth/register", handlers.Auth.Register)
	v1.POST("/auth/login", handlers.Auth.Login)
	v1.POST("/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	v1.POST("/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	v1.GET("/profile", authMiddleware(handlers.Profile.GetProfile))
	v1.PUT("/profile", authMiddleware(handlers.Profile.UpdateProfile))
	v1.PUT("/profile/password", authMiddleware(handlers.Profile.ChangePassword))

	v1.GET("/listings", authMiddleware(handlers.Listing.List))
	v1.POST("/listings", authMiddleware(handlers.Listing.Create))
	v1.GET("/listings/{id}", authMiddleware(handlers.Listing.Get))
	v1.PUT("/listings/{id}", authMiddleware(handlers.Listing.Update))
	v1.DELETE("/listings/{id}", authMiddleware(handlers.Listing.Delete))

	v1.POST("/listings/{id}/rental-periods", authMiddleware(handlers.Listing.AddRentalPeriod))
	v1.PUT("/listings/{id}/rental-periods/{periodId}", authMiddleware(handlers.Listing.UpdateRentalPeriod))
	v1.POST("/listings/{id}/rental-periods/{periodId}/end", authMiddleware(handlers.Listing.EndRentalPeriod))
	v1.POST("/listings/{id}/showings", authMiddleware(handlers.Listing.AddShowing))
	v1.PUT("/listings/{id}/showings/{showingId}", authMiddleware(handlers.Listing.UpdateShowing))
	v1.DELETE("/listings/{id}/showings/{showingId}", authMiddleware(handlers.Listing.RemoveShowing))

	v1.POST("/listings/{id}/photos", authMiddleware(handlers.Listing.AttachPhotos))
	v1.DELETE("/listings/{id}/photos", authMiddleware(handlers.Listing.DetachPhoto))

	v1.GET("/subscription", authMiddleware(handlers.Subscription.Get))
	v1.POST("/subscription/pay", authMiddleware(handlers.Subscription.Pay))

	v1.GET("/geocode/search", authMiddleware(handlers.Geocode.Search))
	v1.GET("/geocode/forward", authMiddleware(handlers.Geocode.Forward))
	v1.GET("/geocode/reverse", authMiddleware(handlers.Geocode.Reverse))
	v1.POST("/geocode/locate", authMiddleware(handlers.Geocode.Locate))
	v1.POST("/geocode/pending", authMiddleware(handlers.Geocode.SetPending))

	v1.GET("/regions", authMiddleware(handlers.Regions.List))
	v1.GET("/regions/{id}", authMiddleware(handlers.Regions.Get))

	v1.GET("/admin/stats", admin(handlers.Admin.Stats))
	v1.GET("/admin/proposals", admin(handlers.Admin.ListProposals))
	v1.PUT("/admin/proposals/{id}/approve", admin(handlers.Admin.Approve))
	v1.PUT("/admin/proposals/{id}/reject", admin(handlers.Admin.Reject))
	v1.GET("/admin/claims", admin(handlers.Admin.ListClaims))
	v1.PUT("/admin/claims/{id}/answer", admin(handlers.Admin.Answer))
	v1.PUT("/admin/claims/{id}/close", admin(handlers.Admin.Close))

	return r
}
