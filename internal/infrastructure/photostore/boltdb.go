package photostore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/realty/domain"
)

var (
	photosBucket = []byte("photos")
	refsBucket   = []byte("refs")
)

// Store persists uploaded photos in BoltDB. Records are keyed by creation time
// so expiry scans stop at the first fresh entry; a second bucket indexes them by reference.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures both buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{photosBucket, refsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Put stores the photo. Putting a reference that is already stored replaces the record and adds a
// holder, so identical uploads shared by several listings survive until each of them lets go.
func (s *Store) Put(_ context.Context, photo *domain.Photo) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if photo == nil || photo.Ref == "" {
		return domain.ErrInvalidPayload
	}
	rec := newRecord(photo)
	photo.ID, photo.CreatedAt = rec.ID, rec.CreatedAt
	key := buildKey(rec)
	idx := refIndex(rec.Ref)

	return s.db.Update(func(tx *bolt.Tx) error {
		photos := tx.Bucket(photosBucket)
		refs := tx.Bucket(refsBucket)
		if oldKey := refs.Get(idx); oldKey != nil {
			if prev, ok := loadRecord(photos, oldKey); ok {
				rec.Holders += prev.Holders
			}
			if err := photos.Delete(oldKey); err != nil {
				return err
			}
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := photos.Put(key, payload); err != nil {
			return err
		}
		return refs.Put(idx, key)
	})
}

func loadRecord(photos *bolt.Bucket, key []byte) (record, bool) {
	raw := photos.Get(key)
	if raw == nil {
		return record{}, false
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, false
	}
	return rec, true
}

// GetByRef loads the photo stored under ref.
func (s *Store) GetByRef(_ context.Context, ref string) (*domain.Photo, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var photo *domain.Photo
	err := s.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(refsBucket).Get(refIndex(ref))
		if key == nil {
			return domain.ErrPhotoNotFound
		}
		raw := tx.Bucket(photosBucket).Get(key)
		if raw == nil {
			return domain.ErrPhotoNotFound
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		photo = rec.toDomain()
		return nil
	})
	return photo, err
}

// DeleteByRef releases one holder of ref and removes the photo once none remain.
// Unknown references are ignored.
func (s *Store) DeleteByRef(_ context.Context, ref string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	idx := refIndex(ref)
	return s.db.Update(func(tx *bolt.Tx) error {
		photos := tx.Bucket(photosBucket)
		refs := tx.Bucket(refsBucket)
		key := refs.Get(idx)
		if key == nil {
			return nil
		}
		if rec, ok := loadRecord(photos, key); ok && rec.Holders > 1 {
			rec.Holders--
			payload, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			return photos.Put(key, payload)
		}
		if err := photos.Delete(key); err != nil {
			return err
		}
		return refs.Delete(idx)
	})
}

// DeleteOlderThan removes every photo created before cutoff and returns how many were dropped.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	limit := keyPrefix(cutoff)
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		photos := tx.Bucket(photosBucket)
		refs := tx.Bucket(refsBucket)

		var expired [][]byte
		var indexes [][]byte
		c := photos.Cursor()
		for k, v := c.First(); k != nil && string(k) < limit; k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			expired = append(expired, append([]byte(nil), k...))
			var rec record
			if err := json.Unmarshal(v, &rec); err == nil {
				indexes = append(indexes, refIndex(rec.Ref))
			}
		}
		// deleting through the cursor would skip the following key
		for _, k := range expired {
			if err := photos.Delete(k); err != nil {
				return err
			}
		}
		for _, idx := range indexes {
			if err := refs.Delete(idx); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// SizeBytes sums the decoded size of every stored photo.
func (s *Store) SizeBytes(_ context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var total int64
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(photosBucket).ForEach(func(_, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			total += rec.Size
			return nil
		})
	})
	return total, err
}

// Count returns the number of stored photos.
func (s *Store) Count(_ context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(photosBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Ping verifies the database file is readable.
func (s *Store) Ping(_ context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(photosBucket) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}
