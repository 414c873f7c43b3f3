package usecase

import (
	"context"

	"github.com/fastygo/realty/domain"
)

// PaymentGateway settles subscription charges. Implementations block for the full round-trip.
type PaymentGateway interface {
	Charge(ctx context.Context, charge domain.PaymentCharge) (domain.PaymentReceipt, error)
}

// Geocoder translates free-text addresses to coordinates and back.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]domain.GeocodeResult, error)
	Forward(ctx context.Context, address string) (*domain.GeocodeResult, error)
	Reverse(ctx context.Context, at domain.Coordinates) (string, error)
}
