package payment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/pkg/apiclient"
)

// HTTPGateway forwards charges to a remote billing service speaking the /api/v1 envelope.
type HTTPGateway struct {
	client *apiclient.Client
	logger *zap.Logger
}

func NewHTTP(client *apiclient.Client, logger *zap.Logger) *HTTPGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPGateway{client: client, logger: logger}
}

func (g *HTTPGateway) Charge(ctx context.Context, charge domain.PaymentCharge) (domain.PaymentReceipt, error) {
	var receipt domain.PaymentReceipt
	if err := g.client.Post(ctx, "/payments", charge, &receipt); err != nil {
		var httpErr *apiclient.HTTPError
		if errors.As(err, &httpErr) {
			g.logger.Warn("billing service rejected charge",
				zap.String("reference", charge.Reference),
				zap.Int("status", httpErr.StatusCode),
			)
		}
		return domain.PaymentReceipt{}, err
	}
	if receipt.Reference == "" {
		receipt.Reference = charge.Reference
	}
	return receipt, nil
}
