package subscription

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/usecase"
)

// DefaultUnitFee is charged per listing per billing period.
var DefaultUnitFee = decimal.NewFromInt(5)

// ListingCounter reports how many listings an account currently holds.
type ListingCounter interface {
	Count() int
}

// ListingSource yields every listing of an account in insertion order.
type ListingSource interface {
	List() []domain.Listing
}

// PaymentObserver receives the outcome of every gateway round-trip.
type PaymentObserver interface {
	ObservePayment(outcome domain.PaymentStatus, elapsed time.Duration)
}

// Options configures a Ledger. Zero values select the defaults.
type Options struct {
	AccountID string
	// UnitFee nil selects DefaultUnitFee; a zero fee makes listings free.
	UnitFee             *decimal.Decimal
	BillingPeriodMonths int
	// Account seeds the ledger; only Status is required.
	Account  *domain.SubscriptionAccount
	Clock    func() time.Time
	Observer PaymentObserver
}

// Ledger tracks the billing state of one agent account.
//
// Status expiry is lazy: nothing flips the account to INACTIVE until Reconcile
// (or CheckStatus, which calls it) runs.
type Ledger struct {
	mu       sync.Mutex
	account  domain.SubscriptionAccount
	listings ListingCounter
	gateway  usecase.PaymentGateway
	inflight *semaphore.Weighted
	pending  atomic.Bool

	accountID string
	unitFee   decimal.Decimal
	months    int
	now       func() time.Time
	observer  PaymentObserver
	logger    *zap.Logger
}

// New builds a ledger billing against listings and settling through gateway.
func New(listings ListingCounter, gateway usecase.PaymentGateway, opts Options, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	unitFee := DefaultUnitFee
	if opts.UnitFee != nil && !opts.UnitFee.IsNegative() {
		unitFee = *opts.UnitFee
	}
	if opts.BillingPeriodMonths <= 0 {
		opts.BillingPeriodMonths = 1
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	account := domain.SubscriptionAccount{
		Status:         domain.SubscriptionInactive,
		PaymentHistory: []domain.PaymentRecord{},
	}
	if opts.Account != nil {
		account = opts.Account.Clone()
		if account.Status == "" {
			account.Status = domain.SubscriptionInactive
		}
	}

	return &Ledger{
		account:   account,
		listings:  listings,
		gateway:   gateway,
		inflight:  semaphore.NewWeighted(1),
		accountID: opts.AccountID,
		unitFee:   unitFee,
		months:    opts.BillingPeriodMonths,
		now:       opts.Clock,
		observer:  opts.Observer,
		logger:    logger,
	}
}

// AmountDue is the listing count times the unit fee. It is computed on every call.
func (l *Ledger) AmountDue() decimal.Decimal {
	count := 0
	if l.listings != nil {
		count = l.listings.Count()
	}
	return l.unitFee.Mul(decimal.NewFromInt(int64(count)))
}

// UnitFee returns the per-listing fee.
func (l *Ledger) UnitFee() decimal.Decimal {
	return l.unitFee
}

// Reconcile moves an expired account to INACTIVE and reports whether it did.
func (l *Ledger) Reconcile() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.account.IsActive() || !l.account.Expired(l.now()) {
		return false
	}
	l.account.Status = domain.SubscriptionInactive
	l.logger.Info("subscription expired",
		zap.String("account_id", l.accountID),
		zap.Time("next_payment_date", l.account.NextPaymentDate),
	)
	return true
}

// IsActive reports the stored status and never writes.
func (l *Ledger) IsActive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.account.IsActive()
}

// CheckStatus reconciles and then reports whether the account is active.
// It writes on read: an expired account is flipped to INACTIVE by this call.
func (l *Ledger) CheckStatus() bool {
	l.Reconcile()
	return l.IsActive()
}

// CanEditListings is CheckStatus under the name the listing editor uses.
func (l *Ledger) CanEditListings() bool {
	return l.CheckStatus()
}

// VisibleListings returns every listing of source when the account is active, else none.
func (l *Ledger) VisibleListings(source ListingSource) []domain.Listing {
	if source == nil || !l.CheckStatus() {
		return []domain.Listing{}
	}
	return source.List()
}

// Account returns a copy of the billing state.
func (l *Ledger) Account() domain.SubscriptionAccount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.account.Clone()
}

// PaymentPending reports whether a Pay call is waiting on the gateway.
func (l *Ledger) PaymentPending() bool {
	return l.pending.Load()
}

// Pay charges amount through the gateway. Only one attempt may be in flight;
// a concurrent call fails fast with domain.ErrPaymentInProgress and never reaches the gateway.
// A failed charge leaves status and history untouched.
func (l *Ledger) Pay(ctx context.Context, amount decimal.Decimal) (*domain.PaymentRecord, error) {
	if amount.IsNegative() {
		verr := &domain.ValidationError{}
		verr.Invalidf("payment amount cannot be negative")
		return nil, verr
	}
	if l.gateway == nil {
		return nil, domain.NewGatewayError("payment", errors.New("no gateway configured"))
	}
	if !l.inflight.TryAcquire(1) {
		return nil, domain.ErrPaymentInProgress
	}
	l.pending.Store(true)
	defer func() {
		l.pending.Store(false)
		l.inflight.Release(1)
	}()

	charge := domain.PaymentCharge{
		Reference: uuid.NewString(),
		AccountID: l.accountID,
		Amount:    amount,
	}
	started := time.Now()
	receipt, err := l.gateway.Charge(ctx, charge)
	elapsed := time.Since(started)
	if err != nil {
		l.observe(domain.PaymentFailed, elapsed)
		l.logger.Warn("payment failed",
			zap.String("account_id", l.accountID),
			zap.String("reference", charge.Reference),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		var gerr *domain.GatewayError
		if errors.As(err, &gerr) {
			return nil, gerr
		}
		return nil, domain.NewGatewayError("payment", err)
	}
	l.observe(domain.PaymentSuccess, elapsed)

	id := receipt.ID
	if id == "" {
		id = charge.Reference
	}

	l.mu.Lock()
	now := l.now()
	record := domain.PaymentRecord{
		ID:     id,
		Date:   now,
		Amount: amount,
		Status: domain.PaymentSuccess,
	}
	l.account.Status = domain.SubscriptionActive
	l.account.LastPaymentDate = now
	l.account.NextPaymentDate = now.AddDate(0, l.months, 0)
	l.account.PaymentHistory = append([]domain.PaymentRecord{record}, l.account.PaymentHistory...)
	next := l.account.NextPaymentDate
	l.mu.Unlock()

	l.logger.Info("payment settled",
		zap.String("account_id", l.accountID),
		zap.String("payment_id", id),
		zap.String("amount", amount.String()),
		zap.Time("next_payment_date", next),
	)
	return &record, nil
}

func (l *Ledger) observe(outcome domain.PaymentStatus, elapsed time.Duration) {
	if l.observer != nil {
		l.observer.ObservePayment(outcome, elapsed)
	}
}
