package memory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fastygo/realty/domain"
)

func validateDraft(d domain.ListingDraft, maxPhotos int) error {
	verr := &domain.ValidationError{}

	if strings.TrimSpace(d.Title) == "" {
		verr.Missing("title")
	}
	if d.PropertyType == "" {
		verr.Missing("propertyType")
	} else if d.PropertyType.Label() == "" {
		verr.Invalidf("unknown property type %q", d.PropertyType)
	}
	if d.DealType == "" {
		verr.Missing("dealType")
	} else if d.DealType != domain.DealSale && d.DealType != domain.DealRent {
		verr.Invalidf("unknown deal type %q", d.DealType)
	}
	if d.Price.IsZero() {
		verr.Missing("price")
	} else if d.Price.IsNegative() {
		verr.Invalidf("price must be greater than 0")
	}
	if strings.TrimSpace(d.Address) == "" {
		verr.Missing("address")
	}

	checkOptional(verr, optionalFields{
		rooms:       d.Rooms,
		area:        d.Area,
		status:      statusPtr(d.PropertyStatus),
		coordinates: d.Coordinates,
		tags:        d.Tags,
		photos:      d.Photos,
	}, maxPhotos)

	return verr.OrNil()
}

func validatePatch(p domain.ListingPatch, maxPhotos int) error {
	verr := &domain.ValidationError{}

	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		verr.Invalidf("title cannot be empty")
	}
	if p.Address != nil && strings.TrimSpace(*p.Address) == "" {
		verr.Invalidf("address cannot be empty")
	}
	if p.Price != nil && !p.Price.IsPositive() {
		verr.Invalidf("price must be greater than 0")
	}
	if p.PropertyType != nil && p.PropertyType.Label() == "" {
		verr.Invalidf("unknown property type %q", *p.PropertyType)
	}
	if p.DealType != nil && *p.DealType != domain.DealSale && *p.DealType != domain.DealRent {
		verr.Invalidf("unknown deal type %q", *p.DealType)
	}

	opt := optionalFields{
		rooms:       p.Rooms,
		area:        p.Area,
		status:      p.PropertyStatus,
		coordinates: p.Coordinates,
	}
	if p.Tags != nil {
		opt.tags = *p.Tags
	}
	if p.Photos != nil {
		opt.photos = *p.Photos
	}
	checkOptional(verr, opt, maxPhotos)

	return verr.OrNil()
}

type optionalFields struct {
	rooms       *int
	area        *decimal.Decimal
	status      *domain.PropertyStatus
	coordinates *domain.Coordinates
	tags        []domain.Feature
	photos      []string
}

func checkOptional(verr *domain.ValidationError, f optionalFields, maxPhotos int) {
	if f.rooms != nil && *f.rooms < 0 {
		verr.Invalidf("rooms cannot be negative")
	}
	if f.area != nil && !f.area.IsPositive() {
		verr.Invalidf("area must be greater than 0")
	}
	if f.status != nil {
		if _, err := domain.ParsePropertyStatus(string(*f.status)); err != nil {
			verr.Invalidf("%v", err)
		}
	}
	if f.coordinates != nil && !f.coordinates.Valid() {
		verr.Invalidf("coordinates out of range: %v,%v", f.coordinates.Lat, f.coordinates.Lng)
	}
	for _, t := range f.tags {
		if !t.Valid() {
			verr.Invalidf("unknown feature %q", t)
		}
	}
	if len(f.photos) > maxPhotos {
		verr.Invalidf("at most %d photos per listing", maxPhotos)
	}
}

func statusPtr(s domain.PropertyStatus) *domain.PropertyStatus {
	if s == "" {
		return nil
	}
	return &s
}

func validateRentPeriod(in domain.RentPeriodInput) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Tenant.Name) == "" {
		verr.Missing("tenant.name")
	}
	if in.Start.IsZero() {
		verr.Missing("startDate")
	}
	if in.End.IsZero() {
		verr.Missing("endDate")
	}
	if !in.Start.IsZero() && !in.End.IsZero() && in.End.Before(in.Start) {
		verr.Invalidf("endDate must not precede startDate")
	}
	if in.MonthlyRent.IsNegative() {
		verr.Invalidf("monthlyRent cannot be negative")
	}
	if in.Deposit.IsNegative() {
		verr.Invalidf("deposit cannot be negative")
	}
	return verr.OrNil()
}

func validateRentPeriodPatch(p domain.RentPeriodPatch) error {
	verr := &domain.ValidationError{}
	if p.Start != nil && p.End != nil && p.End.Before(*p.Start) {
		verr.Invalidf("endDate must not precede startDate")
	}
	if p.MonthlyRent != nil && p.MonthlyRent.IsNegative() {
		verr.Invalidf("monthlyRent cannot be negative")
	}
	if p.Deposit != nil && p.Deposit.IsNegative() {
		verr.Invalidf("deposit cannot be negative")
	}
	if p.Status != nil && *p.Status != domain.RentPeriodActive && *p.Status != domain.RentPeriodCompleted {
		verr.Invalidf("unknown rent period status %q", *p.Status)
	}
	return verr.OrNil()
}
