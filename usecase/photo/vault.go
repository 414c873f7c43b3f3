package photo

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

const (
	DefaultMaxBytes    = 5 * 1024 * 1024
	DefaultRetention   = 30 * 24 * time.Hour
	defaultConcurrency = 4
)

// Upload is a raw image submitted by an agent.
type Upload struct {
	Name string
	Type string
	Data []byte
}

// SaveResult reports the outcome of one upload in a batch.
type SaveResult struct {
	Name  string        `json:"name"`
	Ref   string        `json:"ref,omitempty"`
	Photo *domain.Photo `json:"photo,omitempty"`
	Err   error         `json:"-"`
}

// OK reports whether the upload was stored.
func (r SaveResult) OK() bool {
	return r.Err == nil
}

type Options struct {
	MaxBytes    int64
	Retention   time.Duration
	Concurrency int
	Clock       func() time.Time
}

// Vault encodes images into portable data URLs and keeps them in a key-value store until they expire.
type Vault struct {
	store       repository.PhotoRepository
	maxBytes    int64
	retention   time.Duration
	concurrency int
	now         func() time.Time
	logger      *zap.Logger
}

func New(store repository.PhotoRepository, opts Options, logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Vault{
		store:       store,
		maxBytes:    opts.MaxBytes,
		retention:   opts.Retention,
		concurrency: opts.Concurrency,
		now:         opts.Clock,
		logger:      logger,
	}
}

// Save validates and stores a single image and returns the stored photo.
func (v *Vault) Save(ctx context.Context, upload Upload) (*domain.Photo, error) {
	mime, err := v.validate(upload)
	if err != nil {
		return nil, err
	}

	photo := &domain.Photo{
		ID:        uuid.NewString(),
		Name:      upload.Name,
		Type:      mime,
		Size:      int64(len(upload.Data)),
		Ref:       EncodeDataURL(mime, upload.Data),
		CreatedAt: v.now(),
	}
	if err := v.store.Put(ctx, photo); err != nil {
		return nil, domain.NewGatewayError("photo store", err)
	}
	return photo, nil
}

// SaveBatch stores every upload and reports per-item results in input order.
// One failing upload never aborts the others.
func (v *Vault) SaveBatch(ctx context.Context, uploads []Upload) []SaveResult {
	results := make([]SaveResult, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, u := range uploads {
		g.Go(func() error {
			results[i].Name = u.Name
			photo, err := v.Save(gctx, u)
			if err != nil {
				results[i].Err = err
				v.logger.Warn("photo upload skipped", zap.String("name", u.Name), zap.Error(err))
				return nil
			}
			results[i].Photo = photo
			results[i].Ref = photo.Ref
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Get loads the photo behind a reference.
func (v *Vault) Get(ctx context.Context, ref string) (*domain.Photo, error) {
	return v.store.GetByRef(ctx, ref)
}

// Delete forgets a reference. Unknown references are not an error.
func (v *Vault) Delete(ctx context.Context, ref string) error {
	if err := v.store.DeleteByRef(ctx, ref); err != nil {
		return domain.NewGatewayError("photo store", err)
	}
	return nil
}

// Cleanup drops photos older than the retention window.
func (v *Vault) Cleanup(ctx context.Context) (int, error) {
	cutoff := v.now().Add(-v.retention)
	removed, err := v.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		v.logger.Info("expired photos removed", zap.Int("count", removed), zap.Time("cutoff", cutoff))
	}
	return removed, nil
}

// Usage reports the number of stored photos and their total size in bytes.
func (v *Vault) Usage(ctx context.Context) (int, int64, error) {
	count, err := v.store.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	size, err := v.store.SizeBytes(ctx)
	if err != nil {
		return 0, 0, err
	}
	return count, size, nil
}

func (v *Vault) validate(u Upload) (string, error) {
	verr := &domain.ValidationError{}
	if len(u.Data) == 0 {
		verr.Missing("data")
		return "", verr
	}
	mime := strings.ToLower(strings.TrimSpace(u.Type))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "" {
		mime = http.DetectContentType(u.Data)
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = mime[:i]
		}
	}
	if !strings.HasPrefix(mime, "image/") {
		verr.Invalidf("%s: only images can be uploaded, got %s", u.Name, mime)
	}
	if int64(len(u.Data)) > v.maxBytes {
		verr.Invalidf("%s: file exceeds %d MB", u.Name, v.maxBytes/(1024*1024))
	}
	return mime, verr.OrNil()
}

// EncodeDataURL renders data as a base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURL splits a base64 data URL back into its MIME type and payload.
func DecodeDataURL(ref string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data url")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data url is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return mime, data, nil
}
