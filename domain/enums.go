package domain

import (
	"fmt"
	"strings"
)

// DealType tells whether a listing is offered for sale or for rent.
type DealType string

const (
	DealSale DealType = "SALE"
	DealRent DealType = "RENT"
)

// ParseDealType accepts both the canonical and the lower-case wire form.
func ParseDealType(raw string) (DealType, error) {
	switch DealType(strings.ToUpper(strings.TrimSpace(raw))) {
	case DealSale:
		return DealSale, nil
	case DealRent:
		return DealRent, nil
	}
	return "", fmt.Errorf("unknown deal type %q", raw)
}

// PropertyType is the closed set of property layouts an agent can list.
type PropertyType string

const (
	PropertyStudio       PropertyType = "STUDIO"
	PropertyOnePlusOne   PropertyType = "ONE_PLUS_ONE"
	PropertyTwoPlusOne   PropertyType = "TWO_PLUS_ONE"
	PropertyThreePlusOne PropertyType = "THREE_PLUS_ONE"
	PropertyHouse        PropertyType = "HOUSE"
	PropertyCommercial   PropertyType = "COMMERCIAL"
)

// Upstream listing API only knows these coarse categories.
const (
	APITypeStudio     = "STUDIO"
	APITypeApartment  = "APARTMENT"
	APITypeHouse      = "HOUSE"
	APITypeCommercial = "COMMERCIAL"
)

var propertyTypeAliases = map[string]PropertyType{
	"studio":         PropertyStudio,
	"1+1":            PropertyOnePlusOne,
	"2+1":            PropertyTwoPlusOne,
	"3+1":            PropertyThreePlusOne,
	"house":          PropertyHouse,
	"commercial":     PropertyCommercial,
	"STUDIO":         PropertyStudio,
	"ONE_PLUS_ONE":   PropertyOnePlusOne,
	"TWO_PLUS_ONE":   PropertyTwoPlusOne,
	"THREE_PLUS_ONE": PropertyThreePlusOne,
	"HOUSE":          PropertyHouse,
	"COMMERCIAL":     PropertyCommercial,
}

var propertyTypeLabels = map[PropertyType]string{
	PropertyStudio:       "studio",
	PropertyOnePlusOne:   "1+1",
	PropertyTwoPlusOne:   "2+1",
	PropertyThreePlusOne: "3+1",
	PropertyHouse:        "house",
	PropertyCommercial:   "commercial",
}

// ParsePropertyType normalizes free-form layout strings ("2+1", "studio", "TWO_PLUS_ONE").
func ParsePropertyType(raw string) (PropertyType, error) {
	if pt, ok := propertyTypeAliases[strings.TrimSpace(raw)]; ok {
		return pt, nil
	}
	return "", fmt.Errorf("unknown property type %q", raw)
}

// Label returns the short form agents type in ("2+1").
func (p PropertyType) Label() string {
	return propertyTypeLabels[p]
}

// APIType maps the layout to the upstream API category.
func (p PropertyType) APIType() string {
	switch p {
	case PropertyStudio:
		return APITypeStudio
	case PropertyHouse:
		return APITypeHouse
	case PropertyCommercial:
		return APITypeCommercial
	default:
		return APITypeApartment
	}
}

// PropertyTypeFromAPI is lossy: every apartment comes back as 2+1.
func PropertyTypeFromAPI(apiType string) PropertyType {
	switch apiType {
	case APITypeStudio:
		return PropertyStudio
	case APITypeHouse:
		return PropertyHouse
	case APITypeCommercial:
		return PropertyCommercial
	default:
		return PropertyTwoPlusOne
	}
}

// PropertyStatus tracks the market state of a listing.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "AVAILABLE"
	StatusRented    PropertyStatus = "RENTED"
	StatusSold      PropertyStatus = "SOLD"
	StatusReserved  PropertyStatus = "RESERVED"
)

// ParsePropertyStatus accepts any letter case.
func ParsePropertyStatus(raw string) (PropertyStatus, error) {
	switch PropertyStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusAvailable:
		return StatusAvailable, nil
	case StatusRented:
		return StatusRented, nil
	case StatusSold:
		return StatusSold, nil
	case StatusReserved:
		return StatusReserved, nil
	}
	return "", fmt.Errorf("unknown property status %q", raw)
}

// Feature is a listing tag.
type Feature string

const (
	FeatureParking                 Feature = "PARKING"
	FeatureBalcony                 Feature = "BALCONY"
	FeatureElevator                Feature = "ELEVATOR"
	FeatureSecurity                Feature = "SECURITY"
	FeaturePlayground              Feature = "PLAYGROUND"
	FeatureMetroNearby             Feature = "METRO_NEARBY"
	FeatureCityCenter              Feature = "CITY_CENTER"
	FeatureQuietArea               Feature = "QUIET_AREA"
	FeatureDevelopedInfrastructure Feature = "DEVELOPED_INFRASTRUCTURE"
	FeatureSchoolsNearby           Feature = "SCHOOLS_NEARBY"
	FeatureHospitalsNearby         Feature = "HOSPITALS_NEARBY"
	FeatureShoppingCenters         Feature = "SHOPPING_CENTERS"
	FeatureParkNearby              Feature = "PARK_NEARBY"
	FeatureFurniture               Feature = "FURNITURE"
	FeatureAppliances              Feature = "APPLIANCES"
	FeatureEuroRenovation          Feature = "EURO_RENOVATION"
	FeatureNeedsRenovation         Feature = "NEEDS_RENOVATION"
	FeatureNewBuilding             Feature = "NEW_BUILDING"
	FeatureSecondary               Feature = "SECONDARY"
)

// Features lists every known tag in display order.
var Features = []Feature{
	FeatureParking,
	FeatureBalcony,
	FeatureElevator,
	FeatureSecurity,
	FeaturePlayground,
	FeatureMetroNearby,
	FeatureCityCenter,
	FeatureQuietArea,
	FeatureDevelopedInfrastructure,
	FeatureSchoolsNearby,
	FeatureHospitalsNearby,
	FeatureShoppingCenters,
	FeatureParkNearby,
	FeatureFurniture,
	FeatureAppliances,
	FeatureEuroRenovation,
	FeatureNeedsRenovation,
	FeatureNewBuilding,
	FeatureSecondary,
}

// featureLabels is the wire mapping used by the agent UI.
var featureLabels = map[Feature]string{
	FeatureParking:                 "Парковка",
	FeatureBalcony:                 "Балкон",
	FeatureElevator:                "Лифт",
	FeatureSecurity:                "Охрана",
	FeaturePlayground:              "Детская площадка",
	FeatureMetroNearby:             "Рядом метро",
	FeatureCityCenter:              "Центр города",
	FeatureQuietArea:               "Тихий район",
	FeatureDevelopedInfrastructure: "Развитая инфраструктура",
	FeatureSchoolsNearby:           "Школы рядом",
	FeatureHospitalsNearby:         "Больницы рядом",
	FeatureShoppingCenters:         "Торговые центры",
	FeatureParkNearby:              "Парк рядом",
	FeatureFurniture:               "Мебель",
	FeatureAppliances:              "Техника",
	FeatureEuroRenovation:          "Евроремонт",
	FeatureNeedsRenovation:         "Требует ремонта",
	FeatureNewBuilding:             "Новостройка",
	FeatureSecondary:               "Вторичка",
}

var featuresByLabel = func() map[string]Feature {
	out := make(map[string]Feature, len(featureLabels))
	for f, label := range featureLabels {
		out[label] = f
	}
	return out
}()

// Label returns the localized display text.
func (f Feature) Label() string {
	return featureLabels[f]
}

// Valid reports whether f is one of the known tags.
func (f Feature) Valid() bool {
	_, ok := featureLabels[f]
	return ok
}

// ParseFeature accepts the canonical name (any case) or the display label.
func ParseFeature(raw string) (Feature, error) {
	trimmed := strings.TrimSpace(raw)
	if f := Feature(strings.ToUpper(trimmed)); f.Valid() {
		return f, nil
	}
	if f, ok := featuresByLabel[trimmed]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown feature %q", raw)
}

// ParseFeatures parses every tag and drops duplicates, keeping first-seen order.
func ParseFeatures(raw []string) ([]Feature, error) {
	out := make([]Feature, 0, len(raw))
	seen := make(map[Feature]struct{}, len(raw))
	for _, r := range raw {
		f, err := ParseFeature(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

// FeatureLabels maps tags to display labels, skipping unknown values.
func FeatureLabels(features []Feature) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		if label, ok := featureLabels[f]; ok {
			out = append(out, label)
		}
	}
	return out
}
