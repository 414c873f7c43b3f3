package memory

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

// DefaultFallbackBox covers central Moscow.
var DefaultFallbackBox = domain.BoundingBox{North: 55.9, South: 55.6, East: 37.8, West: 37.4}

// ListingOptions configures the in-memory listing repository.
type ListingOptions struct {
	Node      *snowflake.Node
	Fallback  domain.BoundingBox
	MaxPhotos int
	Clock     func() time.Time
	Rand      *rand.Rand
}

type listingRepository struct {
	mu       sync.RWMutex
	items    []*domain.Listing
	pending  *domain.Coordinates
	node     *snowflake.Node
	fallback domain.BoundingBox
	maxPhoto int
	now      func() time.Time
	rng      *rand.Rand
}

// NewListingRepository returns the process-local listing collection of one agent.
func NewListingRepository(opts ListingOptions) repository.ListingRepository {
	if opts.Node == nil {
		// node 1 is always within the default node range
		opts.Node, _ = snowflake.NewNode(1)
	}
	if opts.Fallback == (domain.BoundingBox{}) {
		opts.Fallback = DefaultFallbackBox
	}
	if opts.MaxPhotos <= 0 {
		opts.MaxPhotos = domain.MaxPhotosPerListing
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return &listingRepository{
		node:     opts.Node,
		fallback: opts.Fallback,
		maxPhoto: opts.MaxPhotos,
		now:      opts.Clock,
		rng:      opts.Rand,
	}
}

func (r *listingRepository) Create(draft domain.ListingDraft) (*domain.Listing, error) {
	if err := validateDraft(draft, r.maxPhoto); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	listing := &domain.Listing{
		ID:             r.node.Generate().Int64(),
		Title:          strings.TrimSpace(draft.Title),
		Address:        strings.TrimSpace(draft.Address),
		Description:    draft.Description,
		Price:          draft.Price,
		Rooms:          draft.Rooms,
		Area:           draft.Area,
		DealType:       draft.DealType,
		PropertyType:   draft.PropertyType,
		PropertyStatus: draft.PropertyStatus,
		Tags:           dedupeFeatures(draft.Tags),
		Photos:         append([]string(nil), draft.Photos...),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if listing.PropertyStatus == "" {
		listing.PropertyStatus = domain.StatusAvailable
	}

	// pending geocode wins over draft coordinates and is consumed by this create only
	switch {
	case r.pending != nil:
		c := *r.pending
		listing.Coordinates = &c
		r.pending = nil
	case draft.Coordinates != nil:
		c := *draft.Coordinates
		listing.Coordinates = &c
	default:
		c := r.fallback.RandomPoint(r.rng)
		listing.Coordinates = &c
	}

	if listing.DealType == domain.DealRent {
		listing.Rental = domain.NewRental()
	}

	r.items = append(r.items, listing)
	return listing.Clone(), nil
}

func (r *listingRepository) Get(id int64) (*domain.Listing, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l := r.find(id)
	if l == nil {
		return nil, false
	}
	return l.Clone(), true
}

func (r *listingRepository) List() []domain.Listing {
	return r.Filter(repository.ListingFilter{})
}

func (r *listingRepository) Filter(filter repository.ListingFilter) []domain.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Listing, 0, len(r.items))
	for _, l := range r.items {
		if filter.Match(l) {
			out = append(out, *l.Clone())
		}
	}
	return out
}

func (r *listingRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *listingRepository) Update(id int64, patch domain.ListingPatch) (*domain.Listing, error) {
	if err := validatePatch(patch, r.maxPhoto); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.find(id)
	if l == nil {
		return nil, nil
	}

	if patch.Title != nil {
		l.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Address != nil {
		l.Address = strings.TrimSpace(*patch.Address)
	}
	if patch.Description != nil {
		l.Description = *patch.Description
	}
	if patch.Price != nil {
		l.Price = *patch.Price
	}
	if patch.Rooms != nil {
		rooms := *patch.Rooms
		l.Rooms = &rooms
	}
	if patch.Area != nil {
		area := *patch.Area
		l.Area = &area
	}
	if patch.PropertyType != nil {
		l.PropertyType = *patch.PropertyType
	}
	if patch.PropertyStatus != nil {
		l.PropertyStatus = *patch.PropertyStatus
	}
	if patch.Coordinates != nil {
		c := *patch.Coordinates
		l.Coordinates = &c
	}
	if patch.Tags != nil {
		l.Tags = dedupeFeatures(*patch.Tags)
	}
	if patch.Photos != nil {
		l.Photos = append([]string(nil), (*patch.Photos)...)
	}
	if patch.Rental != nil {
		l.Rental = patch.Rental.Clone()
	}
	if patch.DealType != nil {
		l.DealType = *patch.DealType
		// switching back to SALE keeps the rental history
		if l.DealType == domain.DealRent && l.Rental == nil {
			l.Rental = domain.NewRental()
		}
	}
	l.UpdatedAt = r.now()
	return l.Clone(), nil
}

func (r *listingRepository) Delete(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.items {
		if l.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listingRepository) SetPendingCoordinates(c *domain.Coordinates) error {
	if c != nil && !c.Valid() {
		verr := &domain.ValidationError{}
		verr.Invalidf("coordinates out of range: %v,%v", c.Lat, c.Lng)
		return verr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c == nil {
		r.pending = nil
		return nil
	}
	cp := *c
	r.pending = &cp
	return nil
}

func (r *listingRepository) PendingCoordinates() *domain.Coordinates {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pending == nil {
		return nil
	}
	c := *r.pending
	return &c
}

func (r *listingRepository) AddRentalPeriod(id int64, input domain.RentPeriodInput) (*domain.RentPeriod, error) {
	if err := validateRentPeriod(input); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.find(id)
	if l == nil || !l.IsRental() {
		return nil, nil
	}
	if l.Rental == nil {
		l.Rental = domain.NewRental()
	}

	tenant := input.Tenant
	period := domain.RentPeriod{
		ID:          r.node.Generate().Int64(),
		Start:       input.Start,
		End:         input.End,
		MonthlyRent: input.MonthlyRent,
		Deposit:     input.Deposit,
		Tenant:      &tenant,
		Status:      domain.RentPeriodActive,
	}
	l.Rental.RentPeriods = append(l.Rental.RentPeriods, period)
	current := tenant
	l.Rental.CurrentTenant = &current
	l.Rental.Calendar.Booked = append(l.Rental.Calendar.Booked, domain.DateRange{
		Start:  input.Start,
		End:    input.End,
		Tenant: tenant.Name,
	})
	l.UpdatedAt = r.now()

	out := period
	t := tenant
	out.Tenant = &t
	return &out, nil
}

func (r *listingRepository) UpdateRentalPeriod(id, periodID int64, patch domain.RentPeriodPatch) (*domain.RentPeriod, error) {
	if err := validateRentPeriodPatch(patch); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findPeriod(id, periodID)
	if p == nil {
		return nil, nil
	}
	if patch.Start != nil {
		p.Start = *patch.Start
	}
	if patch.End != nil {
		p.End = *patch.End
	}
	if patch.MonthlyRent != nil {
		p.MonthlyRent = *patch.MonthlyRent
	}
	if patch.Deposit != nil {
		p.Deposit = *patch.Deposit
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	r.find(id).UpdatedAt = r.now()
	return clonePeriod(p), nil
}

func (r *listingRepository) EndRentalPeriod(id, periodID int64) *domain.RentPeriod {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findPeriod(id, periodID)
	if p == nil {
		return nil
	}
	now := r.now()
	p.Status = domain.RentPeriodCompleted
	p.End = now

	l := r.find(id)
	l.Rental.CurrentTenant = nil
	l.UpdatedAt = now
	return clonePeriod(p)
}

func (r *listingRepository) AddShowing(id int64, input domain.ShowingInput) (*domain.Showing, error) {
	verr := &domain.ValidationError{}
	if input.ScheduledAt.IsZero() {
		verr.Missing("scheduledAt")
	}
	if strings.TrimSpace(input.Client.Name) == "" {
		verr.Missing("client.name")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.find(id)
	if l == nil {
		return nil, nil
	}
	showing := domain.Showing{
		ID:          r.node.Generate().Int64(),
		ScheduledAt: input.ScheduledAt,
		Client:      input.Client,
		Comment:     input.Comment,
	}
	l.Showings = append(l.Showings, showing)
	l.UpdatedAt = r.now()
	return &showing, nil
}

func (r *listingRepository) UpdateShowing(id, showingID int64, patch domain.ShowingPatch) *domain.Showing {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.find(id)
	if l == nil {
		return nil
	}
	for i := range l.Showings {
		s := &l.Showings[i]
		if s.ID != showingID {
			continue
		}
		if patch.ScheduledAt != nil && !patch.ScheduledAt.IsZero() {
			s.ScheduledAt = *patch.ScheduledAt
		}
		if patch.Client != nil {
			s.Client = *patch.Client
		}
		if patch.Comment != nil {
			s.Comment = *patch.Comment
		}
		l.UpdatedAt = r.now()
		out := *s
		return &out
	}
	return nil
}

func (r *listingRepository) RemoveShowing(id, showingID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.find(id)
	if l == nil {
		return false
	}
	for i, s := range l.Showings {
		if s.ID == showingID {
			l.Showings = append(l.Showings[:i], l.Showings[i+1:]...)
			l.UpdatedAt = r.now()
			return true
		}
	}
	return false
}

// find expects the caller to hold the lock.
func (r *listingRepository) find(id int64) *domain.Listing {
	for _, l := range r.items {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (r *listingRepository) findPeriod(id, periodID int64) *domain.RentPeriod {
	l := r.find(id)
	if l == nil || !l.IsRental() || l.Rental == nil {
		return nil
	}
	for i := range l.Rental.RentPeriods {
		if l.Rental.RentPeriods[i].ID == periodID {
			return &l.Rental.RentPeriods[i]
		}
	}
	return nil
}

func clonePeriod(p *domain.RentPeriod) *domain.RentPeriod {
	out := *p
	if p.Tenant != nil {
		t := *p.Tenant
		out.Tenant = &t
	}
	return &out
}

func dedupeFeatures(in []domain.Feature) []domain.Feature {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Feature, 0, len(in))
	seen := make(map[domain.Feature]struct{}, len(in))
	for _, f := range in {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
