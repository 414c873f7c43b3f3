package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/realty/domain"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Region   string `json:"region"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LogoutRequest struct {
	Everywhere bool `json:"everywhere"`
}

type ProfileUpdateRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Region       string `json:"region"`
	Avatar       string `json:"avatar"`
	PersonalLink string `json:"personal_link"`
}

func (r ProfileUpdateRequest) Patch() domain.AgentPatch {
	return domain.AgentPatch{
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Region:       r.Region,
		Avatar:       r.Avatar,
		PersonalLink: r.PersonalLink,
	}
}

type AddressRequest struct {
	Address string `json:"address"`
}

type PasswordChangeRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

// ListingRequest serves both create and update. Absent fields are nil.
type ListingRequest struct {
	Title          *string             `json:"title"`
	Address        *string             `json:"address"`
	Description    *string             `json:"description"`
	Price          *decimal.Decimal    `json:"price"`
	Rooms          *int                `json:"rooms"`
	Area           *decimal.Decimal    `json:"area"`
	DealType       *string             `json:"deal_type"`
	PropertyType   *string             `json:"property_type"`
	PropertyStatus *string             `json:"property_status"`
	Coordinates    *domain.Coordinates `json:"coordinates"`
	Tags           *[]string           `json:"tags"`
	Photos         *[]string           `json:"photos"`
}

type listingEnums struct {
	deal   *domain.DealType
	ptype  *domain.PropertyType
	status *domain.PropertyStatus
	tags   *[]domain.Feature
}

func (r ListingRequest) parseEnums() (listingEnums, error) {
	var out listingEnums
	verr := &domain.ValidationError{}
	if r.DealType != nil && *r.DealType != "" {
		if v, err := domain.ParseDealType(*r.DealType); err != nil {
			verr.Invalidf("%v", err)
		} else {
			out.deal = &v
		}
	}
	if r.PropertyType != nil && *r.PropertyType != "" {
		if v, err := domain.ParsePropertyType(*r.PropertyType); err != nil {
			verr.Invalidf("%v", err)
		} else {
			out.ptype = &v
		}
	}
	if r.PropertyStatus != nil && *r.PropertyStatus != "" {
		if v, err := domain.ParsePropertyStatus(*r.PropertyStatus); err != nil {
			verr.Invalidf("%v", err)
		} else {
			out.status = &v
		}
	}
	if r.Tags != nil {
		if v, err := domain.ParseFeatures(*r.Tags); err != nil {
			verr.Invalidf("%v", err)
		} else {
			out.tags = &v
		}
	}
	return out, verr.OrNil()
}

// Draft converts a create request. Missing required fields are reported by the repository.
func (r ListingRequest) Draft() (domain.ListingDraft, error) {
	enums, err := r.parseEnums()
	if err != nil {
		return domain.ListingDraft{}, err
	}
	d := domain.ListingDraft{
		Title:       deref(r.Title),
		Address:     deref(r.Address),
		Description: deref(r.Description),
		Rooms:       r.Rooms,
		Area:        r.Area,
		Coordinates: r.Coordinates,
	}
	if r.Price != nil {
		d.Price = *r.Price
	}
	if enums.deal != nil {
		d.DealType = *enums.deal
	}
	if enums.ptype != nil {
		d.PropertyType = *enums.ptype
	}
	if enums.status != nil {
		d.PropertyStatus = *enums.status
	}
	if enums.tags != nil {
		d.Tags = *enums.tags
	}
	if r.Photos != nil {
		d.Photos = *r.Photos
	}
	return d, nil
}

func (r ListingRequest) Patch() (domain.ListingPatch, error) {
	enums, err := r.parseEnums()
	if err != nil {
		return domain.ListingPatch{}, err
	}
	return domain.ListingPatch{
		Title:          r.Title,
		Address:        r.Address,
		Description:    r.Description,
		Price:          r.Price,
		Rooms:          r.Rooms,
		Area:           r.Area,
		DealType:       enums.deal,
		PropertyType:   enums.ptype,
		PropertyStatus: enums.status,
		Coordinates:    r.Coordinates,
		Tags:           enums.tags,
		Photos:         r.Photos,
	}, nil
}

type RentPeriodRequest struct {
	Tenant      domain.Contact  `json:"tenant"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	Deposit     decimal.Decimal `json:"deposit"`
}

func (r RentPeriodRequest) Input() domain.RentPeriodInput {
	return domain.RentPeriodInput{
		Tenant:      r.Tenant,
		Start:       r.Start,
		End:         r.End,
		MonthlyRent: r.MonthlyRent,
		Deposit:     r.Deposit,
	}
}

type RentPeriodPatchRequest struct {
	Start       *time.Time       `json:"start"`
	End         *time.Time       `json:"end"`
	MonthlyRent *decimal.Decimal `json:"monthly_rent"`
	Deposit     *decimal.Decimal `json:"deposit"`
	Status      *string          `json:"status"`
}

func (r RentPeriodPatchRequest) Patch() (domain.RentPeriodPatch, error) {
	p := domain.RentPeriodPatch{
		Start:       r.Start,
		End:         r.End,
		MonthlyRent: r.MonthlyRent,
		Deposit:     r.Deposit,
	}
	if r.Status != nil {
		status := domain.RentPeriodStatus(*r.Status)
		if status != domain.RentPeriodActive && status != domain.RentPeriodCompleted {
			verr := &domain.ValidationError{}
			verr.Invalidf("unknown rent period status %q", *r.Status)
			return p, verr
		}
		p.Status = &status
	}
	return p, nil
}

type ShowingRequest struct {
	ScheduledAt time.Time      `json:"scheduled_at"`
	Client      domain.Contact `json:"client"`
	Comment     string         `json:"comment"`
}

func (r ShowingRequest) Input() domain.ShowingInput {
	return domain.ShowingInput{ScheduledAt: r.ScheduledAt, Client: r.Client, Comment: r.Comment}
}

type ShowingPatchRequest struct {
	ScheduledAt *time.Time      `json:"scheduled_at"`
	Client      *domain.Contact `json:"client"`
	Comment     *string         `json:"comment"`
}

func (r ShowingPatchRequest) Patch() domain.ShowingPatch {
	return domain.ShowingPatch{ScheduledAt: r.ScheduledAt, Client: r.Client, Comment: r.Comment}
}

// PayRequest settles the subscription. A missing amount pays the current amount due.
type PayRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type CoordinatesRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (r CoordinatesRequest) Coordinates() (domain.Coordinates, error) {
	verr := &domain.ValidationError{}
	if r.Lat == nil {
		verr.Missing("lat")
	}
	if r.Lng == nil {
		verr.Missing("lng")
	}
	if err := verr.OrNil(); err != nil {
		return domain.Coordinates{}, err
	}
	c := domain.Coordinates{Lat: *r.Lat, Lng: *r.Lng}
	if !c.Valid() {
		verr.Invalidf("coordinates out of range: %v,%v", c.Lat, c.Lng)
		return domain.Coordinates{}, verr
	}
	return c, nil
}

type DetachPhotoRequest struct {
	Ref string `json:"ref"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type AnswerRequest struct {
	Response string `json:"response"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
