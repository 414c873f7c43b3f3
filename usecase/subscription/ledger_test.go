package subscription

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fastygo/realty/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticCount int

func (c staticCount) Count() int { return int(c) }

type staticSource []domain.Listing

func (s staticSource) List() []domain.Listing { return append([]domain.Listing(nil), s...) }

type stubGateway struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
	entered chan struct{}
}

func (g *stubGateway) Charge(ctx context.Context, charge domain.PaymentCharge) (domain.PaymentReceipt, error) {
	g.calls.Add(1)
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return domain.PaymentReceipt{}, ctx.Err()
		}
	}
	if g.err != nil {
		return domain.PaymentReceipt{}, g.err
	}
	return domain.PaymentReceipt{ID: "rcpt-" + charge.Reference, Reference: charge.Reference}, nil
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []domain.PaymentStatus
}

func (o *recordingObserver) ObservePayment(outcome domain.PaymentStatus, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

var epoch = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func TestAmountDue_ScalesWithCount(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 100} {
		l := New(staticCount(n), &stubGateway{}, Options{}, nil)
		assert.True(t, decimal.NewFromInt(int64(5*n)).Equal(l.AmountDue()), "count %d", n)
	}

	fee := decimal.RequireFromString("7.5")
	custom := New(staticCount(3), &stubGateway{}, Options{UnitFee: &fee}, nil)
	assert.Equal(t, "22.5", custom.AmountDue().String())
}

func TestAmountDue_ZeroFeeIsFree(t *testing.T) {
	free := decimal.Zero
	l := New(staticCount(4), &stubGateway{}, Options{UnitFee: &free}, nil)
	assert.True(t, l.UnitFee().IsZero())
	assert.True(t, l.AmountDue().IsZero())
}

func TestPay_SuccessActivatesAndPrependsHistory(t *testing.T) {
	now := epoch
	obs := &recordingObserver{}
	l := New(staticCount(3), &stubGateway{}, Options{
		Clock:    func() time.Time { return now },
		Observer: obs,
		Account: &domain.SubscriptionAccount{
			Status:         domain.SubscriptionInactive,
			PaymentHistory: []domain.PaymentRecord{{ID: "old", Status: domain.PaymentSuccess}},
		},
	}, nil)

	record, err := l.Pay(context.Background(), l.AmountDue())
	require.NoError(t, err)
	require.NotNil(t, record)

	acc := l.Account()
	assert.Equal(t, domain.SubscriptionActive, acc.Status)
	assert.Equal(t, now, acc.LastPaymentDate)
	assert.Equal(t, time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC), acc.NextPaymentDate)
	require.Len(t, acc.PaymentHistory, 2)
	assert.Equal(t, domain.PaymentSuccess, acc.PaymentHistory[0].Status)
	assert.True(t, decimal.NewFromInt(15).Equal(acc.PaymentHistory[0].Amount))
	assert.Equal(t, record.ID, acc.PaymentHistory[0].ID)
	assert.Equal(t, "old", acc.PaymentHistory[1].ID)

	visible := l.VisibleListings(staticSource{{ID: 1}, {ID: 2}, {ID: 3}})
	assert.Len(t, visible, 3)
	assert.Equal(t, []domain.PaymentStatus{domain.PaymentSuccess}, obs.outcomes)
	assert.False(t, l.PaymentPending())
}

func TestPay_FailureKeepsStateAndSurfacesReason(t *testing.T) {
	l := New(staticCount(2), &stubGateway{err: errors.New("card declined")}, Options{}, nil)

	record, err := l.Pay(context.Background(), l.AmountDue())
	require.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "card declined")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))

	acc := l.Account()
	assert.Equal(t, domain.SubscriptionInactive, acc.Status)
	assert.Empty(t, acc.PaymentHistory)
	assert.True(t, acc.LastPaymentDate.IsZero())
}

func TestPay_RejectsNegativeAmount(t *testing.T) {
	gw := &stubGateway{}
	l := New(staticCount(1), gw, Options{}, nil)

	_, err := l.Pay(context.Background(), decimal.NewFromInt(-1))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Zero(t, gw.calls.Load())

	_, err = l.Pay(context.Background(), decimal.Zero)
	assert.NoError(t, err, "a workspace without listings may still renew")
}

func TestPay_AtMostOneInFlight(t *testing.T) {
	gw := &stubGateway{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	l := New(staticCount(1), gw, Options{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := l.Pay(context.Background(), decimal.NewFromInt(5))
		done <- err
	}()
	<-gw.entered
	assert.True(t, l.PaymentPending())

	for i := 0; i < 5; i++ {
		_, err := l.Pay(context.Background(), decimal.NewFromInt(5))
		assert.ErrorIs(t, err, domain.ErrPaymentInProgress)
	}

	close(gw.release)
	require.NoError(t, <-done)

	assert.EqualValues(t, 1, gw.calls.Load())
	assert.Len(t, l.Account().PaymentHistory, 1)
	assert.False(t, l.PaymentPending())
}

func TestPay_ConcurrentCallersProduceSingleEntry(t *testing.T) {
	gw := &stubGateway{release: make(chan struct{})}
	l := New(staticCount(1), gw, Options{}, nil)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := l.Pay(context.Background(), decimal.NewFromInt(5))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrPaymentInProgress):
				rejected.Add(1)
			}
		}()
	}
	close(start)
	// hold the gateway until every other caller has bounced off the guard
	require.Eventually(t, func() bool { return rejected.Load() == 7 }, time.Second, time.Millisecond)
	close(gw.release)
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, 1, gw.calls.Load())
	assert.Len(t, l.Account().PaymentHistory, 1)
}

func TestPay_CanceledContextIsGatewayFailure(t *testing.T) {
	gw := &stubGateway{release: make(chan struct{})}
	l := New(staticCount(1), gw, Options{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Pay(ctx, decimal.NewFromInt(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, l.IsActive())

	// the guard is released after a failure
	close(gw.release)
	_, err = l.Pay(context.Background(), decimal.NewFromInt(5))
	assert.NoError(t, err)
}

func TestCheckStatus_ExpiresLazily(t *testing.T) {
	now := epoch
	l := New(staticCount(3), &stubGateway{}, Options{
		Clock: func() time.Time { return now },
		Account: &domain.SubscriptionAccount{
			Status:          domain.SubscriptionActive,
			NextPaymentDate: epoch.Add(24 * time.Hour),
		},
	}, nil)
	source := staticSource{{ID: 1}, {ID: 2}, {ID: 3}}

	assert.True(t, l.CheckStatus())
	assert.Len(t, l.VisibleListings(source), 3)

	now = epoch.Add(48 * time.Hour)
	assert.True(t, l.IsActive(), "pure query does not reconcile")
	assert.False(t, l.CanEditListings())
	assert.False(t, l.IsActive(), "CheckStatus persisted the transition")
	assert.Empty(t, l.VisibleListings(source))
	assert.NotNil(t, l.VisibleListings(source))
	assert.False(t, l.Reconcile(), "already inactive")
}

func TestCheckStatus_ZeroNextPaymentNeverExpires(t *testing.T) {
	l := New(staticCount(0), &stubGateway{}, Options{
		Account: &domain.SubscriptionAccount{Status: domain.SubscriptionActive},
	}, nil)
	assert.True(t, l.CheckStatus())
	assert.True(t, l.AmountDue().IsZero())
}

func TestAccount_ReturnsCopy(t *testing.T) {
	l := New(staticCount(0), &stubGateway{}, Options{}, nil)
	_, err := l.Pay(context.Background(), decimal.Zero)
	require.NoError(t, err)

	acc := l.Account()
	acc.PaymentHistory[0].Status = domain.PaymentFailed
	acc.Status = domain.SubscriptionInactive

	assert.True(t, l.IsActive())
	assert.Equal(t, domain.PaymentSuccess, l.Account().PaymentHistory[0].Status)
}
