package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is anything that can prove it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// PhotoCounter reports how many photos the store holds.
type PhotoCounter interface {
	Count(ctx context.Context) (int, error)
}

type Deps struct {
	Postgres   Pinger
	Redis      Pinger
	PhotoStore interface {
		Pinger
		PhotoCounter
	}
	// Workspaces reports the number of agent workspaces in memory.
	Workspaces func() int
}

type Monitor struct {
	deps Deps

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(deps Deps, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		deps:     deps,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

// Stop ends the polling loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.done
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy(m.deps.Postgres != nil, m.deps.Redis != nil)
}

// Configured reports which optional dependencies the monitor probes.
func (m *Monitor) Configured() (postgres, redis bool) {
	return m.deps.Postgres != nil, m.deps.Redis != nil
}

func (m *Monitor) PhotoStoreOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PhotoStore
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency once and stores the result.
func (m *Monitor) Refresh() Status {
	photosOK, photos := m.checkPhotos()
	status := Status{
		PostgreSQL: m.ping("postgres", m.deps.Postgres, 3*time.Second),
		Redis:      m.ping("redis", m.deps.Redis, 2*time.Second),
		PhotoStore: photosOK,
		Photos:     photos,
		LastCheck:  time.Now(),
	}
	if m.deps.Workspaces != nil {
		status.Workspaces = m.deps.Workspaces()
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.Healthy(m.deps.Postgres != nil, m.deps.Redis != nil) != status.Healthy(m.deps.Postgres != nil, m.deps.Redis != nil) {
		m.logger.Warn("dependency health changed",
			zap.Bool("postgresql", status.PostgreSQL),
			zap.Bool("redis", status.Redis),
			zap.Bool("photo_store", status.PhotoStore),
		)
	}
	return status
}

func (m *Monitor) ping(name string, p Pinger, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		m.logger.Debug("ping failed", zap.String("component", name), zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkPhotos() (bool, int) {
	if m.deps.PhotoStore == nil {
		return false, 0
	}
	if !m.ping("photo_store", m.deps.PhotoStore, time.Second) {
		return false, 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	count, err := m.deps.PhotoStore.Count(ctx)
	if err != nil {
		m.logger.Warn("photo count check failed", zap.Error(err))
		return false, 0
	}
	return true, count
}
