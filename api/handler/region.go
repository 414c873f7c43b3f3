package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/pkg/httpcontext"
)

// RegionHandler serves the read-only region catalog.
type RegionHandler struct {
	baseHandler
}

func NewRegionHandler(adapter *httpcontext.Adapter, logger *zap.Logger) *RegionHandler {
	return &RegionHandler{baseHandler: newBaseHandler(adapter, logger)}
}

// @Summary List regions
// @Tags regions
// @Router /api/v1/regions [get]
func (h *RegionHandler) List(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, domain.Regions())
}

// Get accepts a region uuid, numeric id or slug.
// @Summary Get region
// @Tags regions
// @Router /api/v1/regions/{id} [get]
func (h *RegionHandler) Get(ctx *fasthttp.RequestCtx) {
	key, _ := ctx.UserValue("id").(string)
	region, ok := domain.LookupRegion(key)
	if !ok {
		h.respondError(ctx, domain.ErrRegionNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, region)
}
