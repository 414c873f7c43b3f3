package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/realty/api/transport"
	"github.com/fastygo/realty/pkg/httpcontext"
	"github.com/fastygo/realty/repository"
	reviewUC "github.com/fastygo/realty/usecase/review"
)

// AdminHandler serves the review queue of agent applications and support claims.
type AdminHandler struct {
	baseHandler
	uc *reviewUC.UseCase
}

func NewAdminHandler(uc *reviewUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

func reviewFilter(args *fasthttp.Args) repository.ReviewFilter {
	limit, _ := strconv.Atoi(string(args.Peek("limit")))
	offset, _ := strconv.Atoi(string(args.Peek("offset")))
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ReviewFilter{
		Status: string(args.Peek("status")),
		Limit:  limit,
		Offset: offset,
	}
}

func (h *AdminHandler) idParam(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing id")
		return "", false
	}
	return id, true
}

// @Summary List agent proposals
// @Tags admin
// @Router /api/v1/admin/proposals [get]
func (h *AdminHandler) ListProposals(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	filter := reviewFilter(ctx.QueryArgs())
	items, err := h.uc.ListProposals(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(items, len(items), filter.Limit, filter.Offset))
}

// @Summary List support claims
// @Tags admin
// @Router /api/v1/admin/claims [get]
func (h *AdminHandler) ListClaims(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	filter := reviewFilter(ctx.QueryArgs())
	items, err := h.uc.ListClaims(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(items, len(items), filter.Limit, filter.Offset))
}

// @Summary Queue counters
// @Tags admin
// @Router /api/v1/admin/stats [get]
func (h *AdminHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Stats(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

// @Summary Approve a proposal
// @Tags admin
// @Router /api/v1/admin/proposals/{id}/approve [put]
func (h *AdminHandler) Approve(ctx *fasthttp.RequestCtx) {
	id, ok := h.idParam(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	p, err := h.uc.Approve(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, p)
}

// @Summary Reject a proposal with a reason
// @Tags admin
// @Router /api/v1/admin/proposals/{id}/reject [put]
func (h *AdminHandler) Reject(ctx *fasthttp.RequestCtx) {
	id, ok := h.idParam(ctx)
	if !ok {
		return
	}
	var req transport.RejectRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	p, err := h.uc.Reject(stdCtx, id, req.Reason)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, p)
}

// @Summary Answer a claim
// @Tags admin
// @Router /api/v1/admin/claims/{id}/answer [put]
func (h *AdminHandler) Answer(ctx *fasthttp.RequestCtx) {
	id, ok := h.idParam(ctx)
	if !ok {
		return
	}
	var req transport.AnswerRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	c, err := h.uc.Answer(stdCtx, id, req.Response)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, c)
}

// @Summary Close a claim
// @Tags admin
// @Router /api/v1/admin/claims/{id}/close [put]
func (h *AdminHandler) Close(ctx *fasthttp.RequestCtx) {
	id, ok := h.idParam(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	c, err := h.uc.Close(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, c)
}
