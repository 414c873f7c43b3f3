package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/realty/api/transport"
	"github.com/fastygo/realty/pkg/httpcontext"
	"github.com/fastygo/realty/usecase/workspace"
)

type SubscriptionHandler struct {
	baseHandler
	workspaces *workspace.Registry
	payTimeout time.Duration
}

func NewSubscriptionHandler(workspaces *workspace.Registry, payTimeout time.Duration, adapter *httpcontext.Adapter, logger *zap.Logger) *SubscriptionHandler {
	if payTimeout <= 0 {
		payTimeout = 30 * time.Second
	}
	return &SubscriptionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		workspaces:  workspaces,
		payTimeout:  payTimeout,
	}
}

// @Summary Billing summary
// @Tags subscription
// @Router /api/v1/subscription [get]
func (h *SubscriptionHandler) Get(ctx *fasthttp.RequestCtx) {
	agentID, ok := h.agentID(ctx)
	if !ok {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.workspaces.Get(agentID).Subscription())
}

// @Summary Pay the subscription
// @Tags subscription
// @Router /api/v1/subscription/pay [post]
func (h *SubscriptionHandler) Pay(ctx *fasthttp.RequestCtx) {
	agentID, ok := h.agentID(ctx)
	if !ok {
		return
	}
	var req transport.PayRequest
	if !h.decode(ctx, &req) {
		return
	}
	ws := h.workspaces.Get(agentID)
	amount := ws.AmountDue()
	if req.Amount != nil {
		amount = *req.Amount
	}

	stdCtx, cancel := h.requestContextWithTimeout(ctx, h.payTimeout)
	defer cancel()

	record, err := ws.Pay(stdCtx, amount)
	if err != nil {
		h.log(stdCtx).Warn("subscription payment failed", zap.String("amount", amount.String()), zap.Error(err))
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"payment":      record,
		"subscription": ws.Subscription(),
	})
}
