package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/realty/api/transport"
	"github.com/fastygo/realty/pkg/httpcontext"
	"github.com/fastygo/realty/usecase/workspace"
)

type GeocodeHandler struct {
	baseHandler
	workspaces *workspace.Registry
}

func NewGeocodeHandler(workspaces *workspace.Registry, adapter *httpcontext.Adapter, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{
		baseHandler: newBaseHandler(adapter, logger),
		workspaces:  workspaces,
	}
}

func (h *GeocodeHandler) workspace(ctx *fasthttp.RequestCtx) (*workspace.Workspace, bool) {
	agentID, ok := h.agentID(ctx)
	if !ok {
		return nil, false
	}
	return h.workspaces.Get(agentID), true
}

// @Summary Address autocomplete
// @Tags geocode
// @Router /api/v1/geocode/search [get]
func (h *GeocodeHandler) Search(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, ws.SearchAddresses(stdCtx, string(ctx.QueryArgs().Peek("q"))))
}

// @Summary Geocode an address
// @Tags geocode
// @Router /api/v1/geocode/forward [get]
func (h *GeocodeHandler) Forward(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := ws.GeocodeAddress(stdCtx, string(ctx.QueryArgs().Peek("address")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, res)
}

// @Summary Geocode an address and keep it for the next listing
// @Tags geocode
// @Accept json
// @Router /api/v1/geocode/locate [post]
func (h *GeocodeHandler) Locate(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	var req transport.AddressRequest
	if !h.decode(ctx, &req) {
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		h.respondInvalid(ctx, "address is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := ws.LocateAddress(stdCtx, req.Address)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, res)
}

// @Summary Describe the place at a point
// @Tags geocode
// @Router /api/v1/geocode/reverse [get]
func (h *GeocodeHandler) Reverse(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	req := transport.CoordinatesRequest{
		Lat: floatArg(ctx.QueryArgs(), "lat"),
		Lng: floatArg(ctx.QueryArgs(), "lng"),
	}
	at, err := req.Coordinates()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	address, err := ws.DescribeLocation(stdCtx, at)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"coordinates": at,
		"address":     address,
	})
}

// @Summary Park a point picked on the map for the next listing
// @Tags geocode
// @Router /api/v1/geocode/pending [post]
func (h *GeocodeHandler) SetPending(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	var req transport.CoordinatesRequest
	if !h.decode(ctx, &req) {
		return
	}
	at, err := req.Coordinates()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if err := ws.SetPendingCoordinates(at); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, at)
}

// floatArg returns nil for a missing or malformed value; validation reports it as missing.
func floatArg(args *fasthttp.Args, name string) *float64 {
	raw := string(args.Peek(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
