package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxPhotosPerListing caps the photo gallery of a single listing.
const MaxPhotosPerListing = 10

// Listing is a property offered by an agent for sale or rent.
type Listing struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Address        string           `json:"address"`
	Description    string           `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	Rooms          *int             `json:"rooms,omitempty"`
	Area           *decimal.Decimal `json:"area,omitempty"`
	DealType       DealType         `json:"deal_type"`
	PropertyType   PropertyType     `json:"property_type"`
	PropertyStatus PropertyStatus   `json:"property_status"`
	Coordinates    *Coordinates     `json:"coordinates,omitempty"`
	Tags           []Feature        `json:"tags,omitempty"`
	Photos         []string         `json:"photos,omitempty"`
	Rental         *Rental          `json:"rental,omitempty"`
	Showings       []Showing        `json:"showings,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// IsRental reports whether rental bookkeeping applies.
func (l *Listing) IsRental() bool {
	return l != nil && l.DealType == DealRent
}

// HasTags reports whether every feature in want is tagged on the listing.
func (l *Listing) HasTags(want []Feature) bool {
	if l == nil {
		return false
	}
	for _, w := range want {
		found := false
		for _, t := range l.Tags {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can never mutate repository state.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	out := *l
	if l.Rooms != nil {
		rooms := *l.Rooms
		out.Rooms = &rooms
	}
	if l.Area != nil {
		area := *l.Area
		out.Area = &area
	}
	if l.Coordinates != nil {
		c := *l.Coordinates
		out.Coordinates = &c
	}
	out.Tags = append([]Feature(nil), l.Tags...)
	out.Photos = append([]string(nil), l.Photos...)
	out.Rental = l.Rental.Clone()
	out.Showings = append([]Showing(nil), l.Showings...)
	return &out
}

// Contact identifies a tenant or a viewing client.
type Contact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	PassportData string `json:"passport_data,omitempty"`
}

// DateRange is an inclusive calendar span.
type DateRange struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Tenant string    `json:"tenant,omitempty"`
}

// Calendar splits a rental's timeline into booked and open ranges.
type Calendar struct {
	Booked    []DateRange `json:"booked_dates"`
	Available []DateRange `json:"available_dates"`
}

// RentPeriodStatus marks whether a lease is still running.
type RentPeriodStatus string

const (
	RentPeriodActive    RentPeriodStatus = "ACTIVE"
	RentPeriodCompleted RentPeriodStatus = "COMPLETED"
)

// RentPeriod is one lease of a rental listing.
type RentPeriod struct {
	ID          int64            `json:"id"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	MonthlyRent decimal.Decimal  `json:"monthly_rent"`
	Deposit     decimal.Decimal  `json:"deposit"`
	Tenant      *Contact         `json:"tenant,omitempty"`
	Status      RentPeriodStatus `json:"status"`
}

// Rental holds the bookkeeping that only makes sense for RENT listings.
type Rental struct {
	CurrentTenant *Contact     `json:"current_tenant"`
	RentPeriods   []RentPeriod `json:"rent_periods"`
	Calendar      Calendar     `json:"calendar"`
}

// NewRental returns an empty rental record.
func NewRental() *Rental {
	return &Rental{
		RentPeriods: []RentPeriod{},
		Calendar: Calendar{
			Booked:    []DateRange{},
			Available: []DateRange{},
		},
	}
}

// Clone deep-copies the rental record.
func (r *Rental) Clone() *Rental {
	if r == nil {
		return nil
	}
	out := &Rental{
		RentPeriods: make([]RentPeriod, len(r.RentPeriods)),
		Calendar: Calendar{
			Booked:    append([]DateRange{}, r.Calendar.Booked...),
			Available: append([]DateRange{}, r.Calendar.Available...),
		},
	}
	if r.CurrentTenant != nil {
		t := *r.CurrentTenant
		out.CurrentTenant = &t
	}
	for i, p := range r.RentPeriods {
		if p.Tenant != nil {
			t := *p.Tenant
			p.Tenant = &t
		}
		out.RentPeriods[i] = p
	}
	return out
}

// Showing is a scheduled viewing appointment.
type Showing struct {
	ID          int64     `json:"id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Client      Contact   `json:"client"`
	Comment     string    `json:"comment,omitempty"`
}

// ListingDraft carries the fields an agent submits when creating a listing.
// Zero values mean "not provided".
type ListingDraft struct {
	Title          string
	Address        string
	Description    string
	Price          decimal.Decimal
	Rooms          *int
	Area           *decimal.Decimal
	DealType       DealType
	PropertyType   PropertyType
	PropertyStatus PropertyStatus
	Coordinates    *Coordinates
	Tags           []Feature
	Photos         []string
}

// ListingPatch is a shallow update: nil fields are left untouched, set slices replace whole values.
type ListingPatch struct {
	Title          *string
	Address        *string
	Description    *string
	Price          *decimal.Decimal
	Rooms          *int
	Area           *decimal.Decimal
	DealType       *DealType
	PropertyType   *PropertyType
	PropertyStatus *PropertyStatus
	Coordinates    *Coordinates
	Tags           *[]Feature
	Photos         *[]string
	Rental         *Rental
}

// RentPeriodInput opens a new lease.
type RentPeriodInput struct {
	Tenant      Contact
	Start       time.Time
	End         time.Time
	MonthlyRent decimal.Decimal
	Deposit     decimal.Decimal
}

// RentPeriodPatch adjusts an existing lease.
type RentPeriodPatch struct {
	Start       *time.Time
	End         *time.Time
	MonthlyRent *decimal.Decimal
	Deposit     *decimal.Decimal
	Status      *RentPeriodStatus
}

// ShowingInput schedules a viewing.
type ShowingInput struct {
	ScheduledAt time.Time
	Client      Contact
	Comment     string
}

// ShowingPatch reschedules or annotates a viewing.
type ShowingPatch struct {
	ScheduledAt *time.Time
	Client      *Contact
	Comment     *string
}
