package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/realty/internal/observability/metrics"
)

// PhotoCleaner is the part of the photo vault the janitor drives.
type PhotoCleaner interface {
	Cleanup(ctx context.Context) (int, error)
	Usage(ctx context.Context) (int, int64, error)
}

// StoreHealth reports whether the photo store answered its last health check.
type StoreHealth interface {
	PhotoStoreOnline() bool
}

type JanitorConfig struct {
	// Schedule is a cron spec; "@every 1h" by default.
	Schedule string
	// RunTimeout bounds a single cleanup pass.
	RunTimeout time.Duration
}

// PhotoJanitor purges photos past their retention window on a cron schedule
// and publishes the store footprint after each pass.
type PhotoJanitor struct {
	vault   PhotoCleaner
	health  StoreHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     JanitorConfig
	running sync.Mutex
}

func NewPhotoJanitor(vault PhotoCleaner, health StoreHealth, logger *zap.Logger, cfg JanitorConfig) (*PhotoJanitor, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 1h"
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &PhotoJanitor{
		vault:  vault,
		health: health,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(),
	}

	if _, err := j.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("photo cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return j, nil
}

// Start launches the cron scheduler.
func (j *PhotoJanitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("photo janitor started", zap.String("schedule", j.cfg.Schedule))
}

// Stop waits for a running pass to finish or for ctx to expire.
func (j *PhotoJanitor) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("photo janitor stopped")
}

// RunOnce performs one cleanup pass. Overlapping passes are skipped.
func (j *PhotoJanitor) RunOnce(ctx context.Context) (int, error) {
	if j == nil || j.vault == nil {
		return 0, nil
	}
	if !j.running.TryLock() {
		j.logger.Debug("skipping photo cleanup (previous pass still running)")
		return 0, nil
	}
	defer j.running.Unlock()

	if j.health != nil && !j.health.PhotoStoreOnline() {
		j.logger.Debug("skipping photo cleanup (store offline)")
		return 0, nil
	}

	removed, err := j.vault.Cleanup(ctx)
	metrics.ObservePhotoCleanup(removed, err)
	if err != nil {
		return 0, err
	}

	count, size, err := j.vault.Usage(ctx)
	if err != nil {
		j.logger.Warn("photo usage check failed", zap.Error(err))
		return removed, nil
	}
	metrics.SetPhotoUsage(count, size)
	return removed, nil
}
