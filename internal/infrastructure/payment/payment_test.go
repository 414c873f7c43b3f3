package payment

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/pkg/apiclient"
)

func TestSimulated_SucceedsAfterLatency(t *testing.T) {
	g := NewSimulated(SimulatedConfig{Latency: 20 * time.Millisecond}, nil)

	started := time.Now()
	receipt, err := g.Charge(context.Background(), domain.PaymentCharge{Reference: "ref-1", Amount: decimal.NewFromInt(15)})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(started), 20*time.Millisecond)
	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, "ref-1", receipt.Reference)
}

func TestSimulated_AlwaysDeclines(t *testing.T) {
	g := NewSimulated(SimulatedConfig{FailureRate: 1}, nil)
	_, err := g.Charge(context.Background(), domain.PaymentCharge{Reference: "r"})
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestSimulated_RateIsSeeded(t *testing.T) {
	g := NewSimulated(SimulatedConfig{FailureRate: 0.5, Rand: rand.New(rand.NewPCG(3, 5))}, nil)
	declined := 0
	for i := 0; i < 200; i++ {
		if _, err := g.Charge(context.Background(), domain.PaymentCharge{}); err != nil {
			declined++
		}
	}
	assert.Greater(t, declined, 50)
	assert.Less(t, declined, 150)
}

func TestSimulated_HonorsCancellation(t *testing.T) {
	g := NewSimulated(SimulatedConfig{Latency: time.Minute}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Charge(ctx, domain.PaymentCharge{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func newBillingServer(t *testing.T, handler fasthttp.RequestHandler) *apiclient.Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() { _ = ln.Close() })
	return apiclient.New(apiclient.Config{
		BaseURL: "http://billing.test",
		Token:   "svc-token",
		HTTPClient: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
	})
}

func TestHTTPGateway_Charge(t *testing.T) {
	client := newBillingServer(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/api/v1/payments", string(ctx.Path()))
		var charge domain.PaymentCharge
		assert.NoError(t, json.Unmarshal(ctx.PostBody(), &charge))
		assert.True(t, decimal.NewFromInt(20).Equal(charge.Amount))
		ctx.SetStatusCode(fasthttp.StatusCreated)
		ctx.SetBodyString(`{"status":"success","data":{"id":"pay-42"}}`)
	})

	g := NewHTTP(client, nil)
	receipt, err := g.Charge(context.Background(), domain.PaymentCharge{Reference: "ref-9", Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)
	assert.Equal(t, "pay-42", receipt.ID)
	assert.Equal(t, "ref-9", receipt.Reference)
}

func TestHTTPGateway_Rejected(t *testing.T) {
	client := newBillingServer(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusPaymentRequired)
		ctx.SetBodyString(`{"status":"error","code":"DECLINED","error":"insufficient funds"}`)
	})

	_, err := NewHTTP(client, nil).Charge(context.Background(), domain.PaymentCharge{Reference: "r"})
	var httpErr *apiclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, fasthttp.StatusPaymentRequired, httpErr.StatusCode)
	assert.Contains(t, err.Error(), "insufficient funds")
}
