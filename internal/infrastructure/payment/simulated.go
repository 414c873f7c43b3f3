package payment

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/realty/domain"
)

// ErrDeclined is the failure reported by the simulated gateway.
var ErrDeclined = errors.New("payment declined by issuer")

type SimulatedConfig struct {
	Latency time.Duration
	// FailureRate is the probability in [0,1] that a charge is declined.
	FailureRate float64
	Clock       func() time.Time
	Rand        *rand.Rand
}

// SimulatedGateway settles charges locally after a fixed delay.
type SimulatedGateway struct {
	latency time.Duration
	rate    float64
	now     func() time.Time
	logger  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulated(cfg SimulatedConfig, logger *zap.Logger) *SimulatedGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x2545f4914f6cdd1d))
	}
	return &SimulatedGateway{
		latency: cfg.Latency,
		rate:    cfg.FailureRate,
		now:     cfg.Clock,
		rng:     cfg.Rand,
		logger:  logger,
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, charge domain.PaymentCharge) (domain.PaymentReceipt, error) {
	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.PaymentReceipt{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.PaymentReceipt{}, err
	}

	if g.declined() {
		g.logger.Debug("simulated charge declined", zap.String("reference", charge.Reference))
		return domain.PaymentReceipt{}, ErrDeclined
	}
	return domain.PaymentReceipt{
		ID:        uuid.NewString(),
		Reference: charge.Reference,
		ChargedAt: g.now(),
	}, nil
}

func (g *SimulatedGateway) declined() bool {
	switch {
	case g.rate <= 0:
		return false
	case g.rate >= 1:
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() < g.rate
}
