package workspace

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
	"github.com/fastygo/realty/usecase"
	"github.com/fastygo/realty/usecase/photo"
	"github.com/fastygo/realty/usecase/subscription"
)

// PhotoVault is the part of the photo vault a workspace needs.
type PhotoVault interface {
	SaveBatch(ctx context.Context, uploads []photo.Upload) []photo.SaveResult
	Delete(ctx context.Context, ref string) error
}

type Deps struct {
	Listings repository.ListingRepository
	Gateway  usecase.PaymentGateway
	Geocoder usecase.Geocoder
	Photos   PhotoVault
}

type Options struct {
	AgentID      string
	Subscription subscription.Options
	MaxPhotos    int
}

// Summary is the billing view shown next to the listing table.
type Summary struct {
	Account        domain.SubscriptionAccount `json:"account"`
	ListingCount   int                        `json:"listing_count"`
	UnitFee        decimal.Decimal            `json:"unit_fee"`
	AmountDue      decimal.Decimal            `json:"amount_due"`
	PaymentPending bool                       `json:"payment_pending"`
}

// Workspace is the state of one agent session: the listing collection and the subscription
// ledger that gates it. Every action runs as one cycle that reconciles the subscription first
// and is serialized against other actions.
type Workspace struct {
	agentID   string
	listings  repository.ListingRepository
	ledger    *subscription.Ledger
	geocoder  usecase.Geocoder
	photos    PhotoVault
	maxPhotos int
	logger    *zap.Logger

	cycle sync.Mutex
}

func New(deps Deps, opts Options, logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxPhotos <= 0 {
		opts.MaxPhotos = domain.MaxPhotosPerListing
	}
	opts.Subscription.AccountID = opts.AgentID
	logger = logger.With(zap.String("agent_id", opts.AgentID))

	return &Workspace{
		agentID:   opts.AgentID,
		listings:  deps.Listings,
		ledger:    subscription.New(deps.Listings, deps.Gateway, opts.Subscription, logger),
		geocoder:  deps.Geocoder,
		photos:    deps.Photos,
		maxPhotos: opts.MaxPhotos,
		logger:    logger,
	}
}

func (w *Workspace) AgentID() string {
	return w.agentID
}

// Listings exposes the raw repository. It is not gated by the subscription:
// writes made through it succeed even while the account is inactive.
func (w *Workspace) Listings() repository.ListingRepository {
	return w.listings
}

func (w *Workspace) Ledger() *subscription.Ledger {
	return w.ledger
}

// begin opens an action cycle. The caller must call the returned func when done.
func (w *Workspace) begin() func() {
	w.cycle.Lock()
	w.ledger.Reconcile()
	return w.cycle.Unlock
}

func (w *Workspace) guardWrite(action string) error {
	if w.ledger.IsActive() {
		return nil
	}
	w.logger.Debug("write refused while subscription inactive", zap.String("action", action))
	return domain.ErrSubscriptionInactive
}

// VisibleListings returns the listings matching filter, or nothing while the subscription is inactive.
func (w *Workspace) VisibleListings(filter repository.ListingFilter) []domain.Listing {
	defer w.begin()()
	if !w.ledger.IsActive() {
		return []domain.Listing{}
	}
	return w.listings.Filter(filter)
}

// Listing returns one listing when the subscription allows reads.
func (w *Workspace) Listing(id int64) (*domain.Listing, error) {
	defer w.begin()()
	if !w.ledger.IsActive() {
		return nil, domain.ErrSubscriptionInactive
	}
	l, ok := w.listings.Get(id)
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return l, nil
}

func (w *Workspace) CreateListing(draft domain.ListingDraft) (*domain.Listing, error) {
	defer w.begin()()
	if err := w.guardWrite("create_listing"); err != nil {
		return nil, err
	}
	created, err := w.listings.Create(draft)
	if err != nil {
		return nil, err
	}
	w.logger.Info("listing created",
		zap.Int64("listing_id", created.ID),
		zap.String("deal_type", string(created.DealType)),
	)
	return created, nil
}

// UpdateListing merges patch into the listing. An unknown id yields (nil, nil).
func (w *Workspace) UpdateListing(id int64, patch domain.ListingPatch) (*domain.Listing, error) {
	defer w.begin()()
	if err := w.guardWrite("update_listing"); err != nil {
		return nil, err
	}
	return w.listings.Update(id, patch)
}

// DeleteListing removes the listing and forgets its photos. Deleting an unknown id reports false.
func (w *Workspace) DeleteListing(ctx context.Context, id int64) (bool, error) {
	defer w.begin()()
	if err := w.guardWrite("delete_listing"); err != nil {
		return false, err
	}
	l, ok := w.listings.Get(id)
	if !ok {
		return false, nil
	}
	removed := w.listings.Delete(id)
	if removed {
		for _, ref := range l.Photos {
			w.forgetPhoto(ctx, ref)
		}
		w.logger.Info("listing deleted", zap.Int64("listing_id", id))
	}
	return removed, nil
}

func (w *Workspace) AddRentalPeriod(id int64, input domain.RentPeriodInput) (*domain.RentPeriod, error) {
	defer w.begin()()
	if err := w.guardWrite("add_rental_period"); err != nil {
		return nil, err
	}
	return w.listings.AddRentalPeriod(id, input)
}

func (w *Workspace) UpdateRentalPeriod(id, periodID int64, patch domain.RentPeriodPatch) (*domain.RentPeriod, error) {
	defer w.begin()()
	if err := w.guardWrite("update_rental_period"); err != nil {
		return nil, err
	}
	return w.listings.UpdateRentalPeriod(id, periodID, patch)
}

func (w *Workspace) EndRentalPeriod(id, periodID int64) (*domain.RentPeriod, error) {
	defer w.begin()()
	if err := w.guardWrite("end_rental_period"); err != nil {
		return nil, err
	}
	return w.listings.EndRentalPeriod(id, periodID), nil
}

func (w *Workspace) AddShowing(id int64, input domain.ShowingInput) (*domain.Showing, error) {
	defer w.begin()()
	if err := w.guardWrite("add_showing"); err != nil {
		return nil, err
	}
	return w.listings.AddShowing(id, input)
}

func (w *Workspace) UpdateShowing(id, showingID int64, patch domain.ShowingPatch) (*domain.Showing, error) {
	defer w.begin()()
	if err := w.guardWrite("update_showing"); err != nil {
		return nil, err
	}
	return w.listings.UpdateShowing(id, showingID, patch), nil
}

func (w *Workspace) RemoveShowing(id, showingID int64) (bool, error) {
	defer w.begin()()
	if err := w.guardWrite("remove_showing"); err != nil {
		return false, err
	}
	return w.listings.RemoveShowing(id, showingID), nil
}

// GeocodeAddress resolves address without touching the pending slot.
func (w *Workspace) GeocodeAddress(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	if w.geocoder == nil {
		return nil, domain.NewError(domain.ErrCodeUnavailable, "geocoding is not configured")
	}
	return w.geocoder.Forward(ctx, address)
}

// LocateAddress geocodes address and parks the result in the pending slot,
// where the next CreateListing picks it up.
func (w *Workspace) LocateAddress(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	res, err := w.GeocodeAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	defer w.begin()()
	if err := w.listings.SetPendingCoordinates(&res.Coordinates); err != nil {
		return nil, err
	}
	return res, nil
}

// SetPendingCoordinates parks a point picked on the map.
func (w *Workspace) SetPendingCoordinates(c domain.Coordinates) error {
	defer w.begin()()
	return w.listings.SetPendingCoordinates(&c)
}

func (w *Workspace) DescribeLocation(ctx context.Context, at domain.Coordinates) (string, error) {
	if w.geocoder == nil {
		return "", domain.NewError(domain.ErrCodeUnavailable, "geocoding is not configured")
	}
	return w.geocoder.Reverse(ctx, at)
}

// SearchAddresses feeds autocomplete. Lookup failures degrade to an empty list.
func (w *Workspace) SearchAddresses(ctx context.Context, query string) []domain.GeocodeResult {
	if w.geocoder == nil {
		return []domain.GeocodeResult{}
	}
	results, err := w.geocoder.Search(ctx, query)
	if err != nil {
		w.logger.Warn("address search failed", zap.String("query", query), zap.Error(err))
		return []domain.GeocodeResult{}
	}
	return results
}

func (w *Workspace) AmountDue() decimal.Decimal {
	return w.ledger.AmountDue()
}

// Subscription reconciles the account and returns the billing summary.
func (w *Workspace) Subscription() Summary {
	defer w.begin()()
	return Summary{
		Account:        w.ledger.Account(),
		ListingCount:   w.listings.Count(),
		UnitFee:        w.ledger.UnitFee(),
		AmountDue:      w.ledger.AmountDue(),
		PaymentPending: w.ledger.PaymentPending(),
	}
}

// Pay settles amount outside the action cycle so reads stay responsive during the gateway round-trip.
func (w *Workspace) Pay(ctx context.Context, amount decimal.Decimal) (*domain.PaymentRecord, error) {
	return w.ledger.Pay(ctx, amount)
}

// AttachPhotos stores uploads and appends the saved references to the listing.
// Uploads beyond the per-listing limit and uploads the vault rejects get per-item errors.
func (w *Workspace) AttachPhotos(ctx context.Context, id int64, uploads []photo.Upload) ([]photo.SaveResult, *domain.Listing, error) {
	if w.photos == nil {
		return nil, nil, domain.NewError(domain.ErrCodeUnavailable, "photo storage is not configured")
	}

	defer w.begin()()
	if err := w.guardWrite("attach_photos"); err != nil {
		return nil, nil, err
	}
	l, ok := w.listings.Get(id)
	if !ok {
		return nil, nil, domain.ErrListingNotFound
	}

	room := w.maxPhotos - len(l.Photos)
	if room < 0 {
		room = 0
	}
	accepted := uploads
	if len(accepted) > room {
		accepted = uploads[:room]
	}

	results := w.photos.SaveBatch(ctx, accepted)
	for _, u := range uploads[len(accepted):] {
		verr := &domain.ValidationError{}
		verr.Invalidf("%s: at most %d photos per listing", u.Name, w.maxPhotos)
		results = append(results, photo.SaveResult{Name: u.Name, Err: verr})
	}

	refs := append([]string(nil), l.Photos...)
	for _, r := range results {
		if r.OK() {
			refs = append(refs, r.Ref)
		}
	}
	if len(refs) == len(l.Photos) {
		return results, l, nil
	}
	updated, err := w.listings.Update(id, domain.ListingPatch{Photos: &refs})
	if err != nil {
		return results, nil, err
	}
	return results, updated, nil
}

// DetachPhoto removes ref from the listing gallery and releases it in the vault. Other listings
// holding the same image keep it.
// An unknown ref leaves the listing unchanged.
func (w *Workspace) DetachPhoto(ctx context.Context, id int64, ref string) (*domain.Listing, error) {
	defer w.begin()()
	if err := w.guardWrite("detach_photo"); err != nil {
		return nil, err
	}
	l, ok := w.listings.Get(id)
	if !ok {
		return nil, domain.ErrListingNotFound
	}

	refs := make([]string, 0, len(l.Photos))
	for _, p := range l.Photos {
		if p != ref {
			refs = append(refs, p)
		}
	}
	if len(refs) == len(l.Photos) {
		return l, nil
	}
	updated, err := w.listings.Update(id, domain.ListingPatch{Photos: &refs})
	if err != nil {
		return nil, err
	}
	// the vault counts one holder per attached copy
	for range len(l.Photos) - len(refs) {
		w.forgetPhoto(ctx, ref)
	}
	return updated, nil
}

func (w *Workspace) forgetPhoto(ctx context.Context, ref string) {
	if w.photos == nil {
		return
	}
	if err := w.photos.Delete(ctx, ref); err != nil {
		w.logger.Warn("failed to delete photo", zap.Error(err))
	}
}
