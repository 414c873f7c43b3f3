package repository

import (
	"github.com/shopspring/decimal"

	"github.com/fastygo/realty/domain"
)

// ListingFilter narrows a listing read. Zero-valued fields do not filter.
type ListingFilter struct {
	DealType       domain.DealType
	PropertyStatus domain.PropertyStatus
	PropertyType   domain.PropertyType
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	MinRooms       *int
	MaxRooms       *int
	Tags           []domain.Feature
}

// Match reports whether l satisfies every set criterion.
func (f ListingFilter) Match(l *domain.Listing) bool {
	if l == nil {
		return false
	}
	if f.DealType != "" && l.DealType != f.DealType {
		return false
	}
	if f.PropertyStatus != "" && l.PropertyStatus != f.PropertyStatus {
		return false
	}
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	if f.MinPrice != nil && l.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && l.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRooms != nil && (l.Rooms == nil || *l.Rooms < *f.MinRooms) {
		return false
	}
	if f.MaxRooms != nil && (l.Rooms == nil || *l.Rooms > *f.MaxRooms) {
		return false
	}
	return l.HasTags(f.Tags)
}

// ListingRepository is the synchronous collection of an agent's listings.
// Lookups by an unknown id are silent no-ops: mutators return nil results, not errors.
type ListingRepository interface {
	Create(draft domain.ListingDraft) (*domain.Listing, error)
	Get(id int64) (*domain.Listing, bool)
	List() []domain.Listing
	Filter(filter ListingFilter) []domain.Listing
	Count() int
	Update(id int64, patch domain.ListingPatch) (*domain.Listing, error)
	Delete(id int64) bool

	SetPendingCoordinates(c *domain.Coordinates) error
	PendingCoordinates() *domain.Coordinates

	AddRentalPeriod(id int64, input domain.RentPeriodInput) (*domain.RentPeriod, error)
	UpdateRentalPeriod(id, periodID int64, patch domain.RentPeriodPatch) (*domain.RentPeriod, error)
	EndRentalPeriod(id, periodID int64) *domain.RentPeriod

	AddShowing(id int64, input domain.ShowingInput) (*domain.Showing, error)
	UpdateShowing(id, showingID int64, patch domain.ShowingPatch) *domain.Showing
	RemoveShowing(id, showingID int64) bool
}
