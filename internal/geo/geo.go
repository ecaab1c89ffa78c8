// Package geo provides the device position used by distress signals and
// the distance math used to match helpers to it.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKM is the mean Earth radius used by Distance.
const EarthRadiusKM = 6371.0

// ErrUnavailable is returned when no position can be determined
// (no fix configured, or the provider refused).
var ErrUnavailable = errors.New("location unavailable")

// Location is a latitude/longitude pair in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Location) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Latitude, l.Longitude)
}

// Valid reports whether both coordinates are within range.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// Locator obtains the current position.
type Locator interface {
	Locate(ctx context.Context) (Location, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (Location, error)

// Locate implements Locator.
func (f LocatorFunc) Locate(ctx context.Context) (Location, error) {
	return f(ctx)
}

// StaticLocator always reports a fixed position.
// The zero value has no fix and returns ErrUnavailable.
type StaticLocator struct {
	loc Location
	set bool
}

// Fixed returns a StaticLocator pinned to loc.
func Fixed(loc Location) *StaticLocator {
	return &StaticLocator{loc: loc, set: true}
}

// Locate implements Locator.
func (s *StaticLocator) Locate(ctx context.Context) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}
	if s == nil || !s.set {
		return Location{}, ErrUnavailable
	}
	if !s.loc.Valid() {
		return Location{}, fmt.Errorf("%w: coordinates out of range (%s)", ErrUnavailable, s.loc)
	}
	return s.loc, nil
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Location) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dlat := lat2 - lat1
	dlon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKM * c
}

// MapsURL returns a Google Maps link pointing at loc.
func MapsURL(loc Location) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", loc.Latitude, loc.Longitude)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
