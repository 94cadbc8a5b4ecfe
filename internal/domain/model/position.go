package model

import (
	"fmt"

	"github.com/golang/geo/s2"
	"github.com/shopspring/decimal"
)

// Position is a selected map point. Map collaborators hand it over as a
// [longitude, latitude] pair.
type Position struct {
	Longitude float64
	Latitude  float64
}

// FromPair builds a Position from a [longitude, latitude] pair.
func FromPair(p [2]float64) Position {
	return Position{Longitude: p[0], Latitude: p[1]}
}

// Pair returns the position as [longitude, latitude].
func (p Position) Pair() [2]float64 {
	return [2]float64{p.Longitude, p.Latitude}
}

// Validate reports ErrInvalidPosition for points off the globe.
func (p Position) Validate() error {
	if !s2.LatLngFromDegrees(p.Latitude, p.Longitude).IsValid() {
		return fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidPosition, p.Latitude, p.Longitude)
	}
	return nil
}

// LatString renders the latitude the way the report store keeps it.
func (p Position) LatString() string {
	return decimal.NewFromFloat(p.Latitude).String()
}

// LonString renders the longitude the way the report store keeps it.
func (p Position) LonString() string {
	return decimal.NewFromFloat(p.Longitude).String()
}

// ParsePosition reads decimal latitude and longitude strings.
func ParsePosition(lat, lon string) (Position, error) {
	la, err := decimal.NewFromString(lat)
	if err != nil {
		return Position{}, fmt.Errorf("%w: latitude %q: %w", ErrInvalidPosition, lat, err)
	}
	lo, err := decimal.NewFromString(lon)
	if err != nil {
		return Position{}, fmt.Errorf("%w: longitude %q: %w", ErrInvalidPosition, lon, err)
	}
	p := Position{Latitude: la.InexactFloat64(), Longitude: lo.InexactFloat64()}
	if err := p.Validate(); err != nil {
		return Position{}, err
	}
	return p, nil
}
