package photostore

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/realty/domain"
)

type record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	Ref       string    `json:"data"`
	CreatedAt time.Time `json:"timestamp"`
	// Holders counts the Puts of this reference not yet released by DeleteByRef.
	Holders int `json:"holders"`
}

func newRecord(p *domain.Photo) record {
	rec := record{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		Size:      p.Size,
		Ref:       p.Ref,
		CreatedAt: p.CreatedAt,
		Holders:   1,
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return rec
}

func (r record) toDomain() *domain.Photo {
	return &domain.Photo{
		ID:        r.ID,
		Name:      r.Name,
		Type:      r.Type,
		Size:      r.Size,
		Ref:       r.Ref,
		CreatedAt: r.CreatedAt,
	}
}

func buildKey(r record) []byte {
	return []byte(keyPrefix(r.CreatedAt) + "_" + r.ID)
}

// keyPrefix sorts lexically in time order for every timestamp after 1970.
func keyPrefix(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixNano())
}

// refIndex keeps index keys short; data URLs exceed Bolt's key size limit.
func refIndex(ref string) []byte {
	sum := sha256.Sum256([]byte(ref))
	return sum[:]
}
