package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/realty/api/transport"
	"github.com/fastygo/realty/internal/infrastructure/monitor"
	"github.com/fastygo/realty/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check reports the last probe result. ?refresh=true probes the dependencies synchronously first.
// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	if ctx.QueryArgs().GetBool("refresh") || status.LastCheck.IsZero() {
		status = h.monitor.Refresh()
	}
	pg, rd := h.monitor.Configured()

	report := transport.HealthReport{
		Timestamp:  time.Now().UTC(),
		LastCheck:  status.LastCheck.UTC(),
		Workspaces: status.Workspaces,
		Services: transport.HealthServices{
			PostgreSQL: transport.ServiceState(pg, status.PostgreSQL),
			Redis:      transport.ServiceState(rd, status.Redis),
			PhotoStore: transport.PhotoStoreHealth{
				State:  transport.ServiceState(true, status.PhotoStore),
				Photos: status.Photos,
			},
		},
	}

	if status.Healthy(pg, rd) {
		h.respondSuccess(ctx, http.StatusOK, report)
		return
	}
	h.logger.Warn("health check degraded",
		zap.String("postgresql", report.Services.PostgreSQL),
		zap.String("redis", report.Services.Redis),
		zap.String("photo_store", report.Services.PhotoStore.State),
	)
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", report))
}
