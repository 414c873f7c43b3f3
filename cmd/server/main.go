package main

import (
	"context"
	"log"

	"github.com/bwmarrin/snowflake"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/realty/api/handler"
	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/internal/config"
	"github.com/fastygo/realty/internal/infrastructure/geocoding"
	"github.com/fastygo/realty/internal/infrastructure/monitor"
	"github.com/fastygo/realty/internal/infrastructure/payment"
	"github.com/fastygo/realty/internal/infrastructure/photostore"
	pgInfra "github.com/fastygo/realty/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/realty/internal/infrastructure/redis"
	"github.com/fastygo/realty/internal/middleware"
	"github.com/fastygo/realty/internal/observability/metrics"
	"github.com/fastygo/realty/internal/router"
	"github.com/fastygo/realty/internal/services"
	"github.com/fastygo/realty/internal/services/lifecycle"
	"github.com/fastygo/realty/pkg/apiclient"
	"github.com/fastygo/realty/pkg/httpcontext"
	"github.com/fastygo/realty/pkg/logger"
	"github.com/fastygo/realty/repository"
	"github.com/fastygo/realty/repository/memory"
	"github.com/fastygo/realty/repository/postgres"
	redisRepo "github.com/fastygo/realty/repository/redis"
	"github.com/fastygo/realty/usecase"
	authUC "github.com/fastygo/realty/usecase/auth"
	photoUC "github.com/fastygo/realty/usecase/photo"
	profileUC "github.com/fastygo/realty/usecase/profile"
	reviewUC "github.com/fastygo/realty/usecase/review"
	"github.com/fastygo/realty/usecase/subscription"
	"github.com/fastygo/realty/usecase/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.JWT.Secret == "" {
		zapLogger.Fatal("JWT_SECRET is required")
	}
	initialStatus, err := domain.ParseSubscriptionStatus(cfg.Subscription.InitialStatus)
	if err != nil {
		zapLogger.Fatal("invalid subscription status", zap.Error(err))
	}
	node, err := snowflake.NewNode(cfg.Listings.SnowflakeNode)
	if err != nil {
		zapLogger.Fatal("invalid snowflake node", zap.Error(err))
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	monDeps := monitor.Deps{}

	var (
		agentRepo   repository.AgentRepository
		reviewRepo  repository.ReviewRepository
		sessionRepo repository.SessionRepository
	)

	if cfg.Database.Enabled {
		if cfg.Migrations.Enabled {
			if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
				zapLogger.Fatal("migrations failed", zap.Error(err))
			}
		}
		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		monDeps.Postgres = pool
		agentRepo = postgres.NewAgentRepository(pool)
		reviewRepo = postgres.NewReviewRepository(pool)
	} else {
		zapLogger.Warn("postgres disabled, agents and review queue are kept in memory")
		agentRepo = memory.NewAgentRepository()
		reviewRepo = memory.NewReviewRepository(nil, nil)
	}

	if cfg.Redis.Enabled {
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			redisInfra.Close(redisClient, zapLogger)
			return nil
		})
		monDeps.Redis = monitor.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		sessionRepo = redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	} else {
		zapLogger.Warn("redis disabled, sessions are kept in memory")
		sessionRepo = memory.NewSessionRepository(cfg.JWT.SessionTTL)
	}

	photoStore, err := photostore.Open(cfg.Photos.StorePath)
	if err != nil {
		zapLogger.Fatal("failed to open photo store", zap.Error(err), zap.String("path", cfg.Photos.StorePath))
	}
	manager.RegisterCloser("photo_store", photoStore)
	monDeps.PhotoStore = photoStore

	vault := photoUC.New(photoStore, photoUC.Options{
		MaxBytes:    cfg.Photos.MaxBytes,
		Retention:   cfg.Photos.Retention,
		Concurrency: cfg.Photos.Concurrency,
	}, zapLogger.Named("photos"))

	geocoder := geocoding.New(geocoding.Config{
		BaseURL:   cfg.Geocoding.BaseURL,
		Language:  cfg.Geocoding.Language,
		UserAgent: cfg.Geocoding.UserAgent,
		Timeout:   cfg.Geocoding.Timeout,
	}, zapLogger.Named("geocoding"))

	gateway := newPaymentGateway(cfg.Payments, zapLogger.Named("payments"))

	fallback := domain.BoundingBox{
		North: cfg.Listings.FallbackNorth,
		South: cfg.Listings.FallbackSouth,
		East:  cfg.Listings.FallbackEast,
		West:  cfg.Listings.FallbackWest,
	}
	workspaceLogger := zapLogger.Named("workspace")
	registry := workspace.NewRegistry(func(agentID string) *workspace.Workspace {
		return workspace.New(workspace.Deps{
			Listings: memory.NewListingRepository(memory.ListingOptions{
				Node:      node,
				Fallback:  fallback,
				MaxPhotos: cfg.Photos.MaxPerListing,
			}),
			Gateway:  gateway,
			Geocoder: geocoder,
			Photos:   vault,
		}, workspace.Options{
			AgentID:   agentID,
			MaxPhotos: cfg.Photos.MaxPerListing,
			Subscription: subscription.Options{
				UnitFee:             &cfg.Subscription.UnitFee,
				BillingPeriodMonths: cfg.Subscription.BillingPeriodMonths,
				Account:             &domain.SubscriptionAccount{Status: initialStatus},
				Observer:            metrics.Payments{},
			},
		}, workspaceLogger)
	})
	monDeps.Workspaces = func() int {
		n := registry.Len()
		metrics.SetWorkspaces(n)
		return n
	}

	mon := monitor.New(monDeps, cfg.Context.HealthInterval, zapLogger.Named("monitor"))
	mon.Start()
	manager.RegisterStopper("monitor", mon)

	janitor, err := services.NewPhotoJanitor(vault, mon, zapLogger.Named("janitor"), services.JanitorConfig{
		Schedule: cfg.Photos.CleanupSchedule,
	})
	if err != nil {
		zapLogger.Fatal("invalid photo cleanup schedule", zap.Error(err))
	}
	janitor.Start()
	manager.Register("photo_janitor", func(ctx context.Context) error {
		janitor.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(agentRepo, sessionRepo, authUC.Options{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.SessionTTL,
	}, zapLogger.Named("auth"))
	profileUseCase := profileUC.New(agentRepo, zapLogger.Named("profile"))
	reviewUseCase := reviewUC.New(reviewRepo, nil, zapLogger.Named("review"))

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		admin, created, err := authUseCase.EnsureAgent(appCtx, authUC.RegisterInput{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			Role:     domain.RoleAdmin,
		})
		if err != nil {
			zapLogger.Fatal("admin bootstrap failed", zap.Error(err))
		}
		if created {
			zapLogger.Info("admin account created", zap.String("agent_id", admin.ID))
		}
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout).TrustProxies(cfg.HTTP.TrustProxies)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Listing:      apiHandler.NewListingHandler(registry, cfg.Photos.MaxBytes, ctxAdapter, zapLogger),
		Subscription: apiHandler.NewSubscriptionHandler(registry, cfg.Payments.Timeout, ctxAdapter, zapLogger),
		Geocode:      apiHandler.NewGeocodeHandler(registry, ctxAdapter, zapLogger),
		Regions:      apiHandler.NewRegionHandler(ctxAdapter, zapLogger),
		Admin:        apiHandler.NewAdminHandler(reviewUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = metrics.Handler()
	}
	if cfg.HTTP.EnablePprof {
		handlers.Pprof = pprofhandler.PprofHandler
	}

	authMiddleware := middleware.Auth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:            metrics.Middleware(r.Handler),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxConnsPerIP:      cfg.HTTP.MaxConn,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()), zap.String("env", cfg.Environment))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func newPaymentGateway(cfg config.PaymentsConfig, gwLogger *zap.Logger) usecase.PaymentGateway {
	switch cfg.Gateway {
	case "http":
		if cfg.URL == "" {
			gwLogger.Fatal("PAYMENT_URL is required for the http gateway")
		}
		client := apiclient.New(apiclient.Config{
			BaseURL: cfg.URL,
			Token:   cfg.Token,
			Timeout: cfg.Timeout,
		})
		return payment.NewHTTP(client, gwLogger)
	case "simulated", "":
		return payment.NewSimulated(payment.SimulatedConfig{
			Latency:     cfg.Latency,
			FailureRate: cfg.FailureRate,
		}, gwLogger)
	default:
		gwLogger.Fatal("unknown payment gateway", zap.String("gateway", cfg.Gateway))
		return nil
	}
}
