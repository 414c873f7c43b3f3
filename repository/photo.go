package repository

import (
	"context"
	"time"

	"github.com/fastygo/realty/domain"
)

// PhotoRepository is the key-value store behind the photo vault.
type PhotoRepository interface {
	Put(ctx context.Context, photo *domain.Photo) error
	GetByRef(ctx context.Context, ref string) (*domain.Photo, error)
	DeleteByRef(ctx context.Context, ref string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	SizeBytes(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}
