package domain

import (
	"math"
	"math/rand/v2"
)

const earthRadiusKm = 6371.0

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within latitude/longitude bounds.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// DistanceKm returns the haversine distance to other in kilometres.
func (c Coordinates) DistanceKm(other Coordinates) float64 {
	dLat := deg2rad(other.Lat - c.Lat)
	dLng := deg2rad(other.Lng - c.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(c.Lat))*math.Cos(deg2rad(other.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// BoundingBox constrains fallback coordinates for listings that were never geocoded.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Contains reports whether c lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lng >= b.West && c.Lng <= b.East
}

// RandomPoint picks a uniformly random point inside the box.
func (b BoundingBox) RandomPoint(r *rand.Rand) Coordinates {
	f := rand.Float64
	if r != nil {
		f = r.Float64
	}
	return Coordinates{
		Lat: b.South + f()*(b.North-b.South),
		Lng: b.West + f()*(b.East-b.West),
	}
}

// GeocodeResult is a single match returned by the geocoding gateway.
type GeocodeResult struct {
	Coordinates
	DisplayName      string  `json:"display_name"`
	FormattedAddress string  `json:"formatted_address"`
	Type             string  `json:"type,omitempty"`
	Importance       float64 `json:"importance,omitempty"`
}
