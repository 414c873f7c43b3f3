package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/fastygo/realty/domain"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realty_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "realty_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	paymentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "realty_payment_duration_seconds",
		Help:    "Duration of payment gateway round-trips",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"result"})

	listingActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realty_listing_actions_total",
		Help: "Listing mutations by action and result",
	}, []string{"action", "result"})

	photoCleanup = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realty_photo_cleanup_total",
		Help: "Photos removed by the retention janitor",
	}, []string{"result"})

	photosStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realty_photos_stored",
		Help: "Number of photos held in the photo store",
	})

	photoBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realty_photo_store_bytes",
		Help: "Total size of stored photos in bytes",
	})

	activeWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realty_active_workspaces",
		Help: "Agent workspaces held in memory",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveListingAction counts a listing mutation. result is "ok", "rejected" or "error".
func ObserveListingAction(action, result string) {
	listingActions.WithLabelValues(action, result).Inc()
}

// ObservePhotoCleanup records one janitor run.
func ObservePhotoCleanup(removed int, err error) {
	if err != nil {
		photoCleanup.WithLabelValues("error").Inc()
		return
	}
	photoCleanup.WithLabelValues("removed").Add(float64(removed))
}

// SetPhotoUsage publishes the current photo store footprint.
func SetPhotoUsage(count int, size int64) {
	photosStored.Set(float64(count))
	photoBytes.Set(float64(size))
}

// SetWorkspaces sets the number of agent workspaces in memory.
func SetWorkspaces(n int) {
	activeWorkspaces.Set(float64(n))
}

// Payments feeds payment outcomes from subscription ledgers into prometheus.
type Payments struct{}

func (Payments) ObservePayment(outcome domain.PaymentStatus, elapsed time.Duration) {
	paymentDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// Handler serves the default registry in the prometheus text format.
func Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
}
