package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/realty/domain"
)

func TestPayments_ObservesOutcome(t *testing.T) {
	Payments{}.ObservePayment(domain.PaymentSuccess, 150*time.Millisecond)
	Payments{}.ObservePayment(domain.PaymentFailed, time.Second)
	assert.Equal(t, 2, testutil.CollectAndCount(paymentDuration))
}

func TestPhotoGauges(t *testing.T) {
	SetPhotoUsage(3, 2048)
	assert.Equal(t, float64(3), testutil.ToFloat64(photosStored))
	assert.Equal(t, float64(2048), testutil.ToFloat64(photoBytes))

	before := testutil.ToFloat64(photoCleanup.WithLabelValues("removed"))
	ObservePhotoCleanup(4, nil)
	assert.Equal(t, before+4, testutil.ToFloat64(photoCleanup.WithLabelValues("removed")))
}

func TestMiddleware_LabelsUnmatchedRoutes(t *testing.T) {
	h := Middleware(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusTeapot)
	})
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/nowhere")

	h(&ctx)
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "418")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	SetWorkspaces(2)
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/metrics")

	Handler()(&ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "realty_active_workspaces 2")
}
