// Package helpers resolves who receives a distress signal.
//
// Static returns a fixed address (the historical placeholder
// helper@example.com by default). Nearest asks the server for the registered
// helper list and picks the closest one within a radius.
package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"distress/internal/geo"
)

// PlaceholderRecipient is the address used when no directory is configured.
const PlaceholderRecipient = "helper@example.com"

// DefaultRadiusKM is the search radius used by Nearest when none is given.
const DefaultRadiusKM = 10.0

// ErrNoHelpers is returned when no helper is registered within range.
var ErrNoHelpers = errors.New("no helpers in range")

// Helper is a registered helper as listed by the server.
type Helper struct {
	ID        int     `json:"id"`
	Name      string  `json:"name,omitempty"`
	Email     string  `json:"email"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location returns the helper's registered position.
func (h Helper) Location() geo.Location {
	return geo.Location{Latitude: h.Latitude, Longitude: h.Longitude}
}

// Directory picks the recipient email for a signal sent from loc.
type Directory interface {
	Recipient(ctx context.Context, loc geo.Location) (string, error)
}

// Static always returns the same recipient.
type Static string

// Recipient implements Directory.
func (s Static) Recipient(ctx context.Context, _ geo.Location) (string, error) {
	if s == "" {
		return PlaceholderRecipient, nil
	}
	return string(s), nil
}

// Lister lists registered helpers (implemented by api.Client).
type Lister interface {
	ListHelpers(ctx context.Context) ([]Helper, error)
}

// Match is a helper together with its distance from the signal.
type Match struct {
	Helper     Helper
	DistanceKM float64
}

// Nearest picks the closest registered helper within RadiusKM.
type Nearest struct {
	Lister   Lister
	RadiusKM float64
	// Fallback is consulted when no helper is in range. Nil means
	// ErrNoHelpers is returned instead.
	Fallback Directory
	Logger   *slog.Logger
}

// Recipient implements Directory.
func (n *Nearest) Recipient(ctx context.Context, loc geo.Location) (string, error) {
	list, err := n.Lister.ListHelpers(ctx)
	if err != nil {
		return "", fmt.Errorf("list helpers: %w", err)
	}
	matches := InRange(list, loc, n.radius())
	n.logger().Debug("helper lookup", "location", loc.String(), "registered", len(list), "in_range", len(matches))
	if len(matches) == 0 {
		if n.Fallback != nil {
			return n.Fallback.Recipient(ctx, loc)
		}
		return "", ErrNoHelpers
	}
	return matches[0].Helper.Email, nil
}

func (n *Nearest) radius() float64 {
	if n.RadiusKM <= 0 {
		return DefaultRadiusKM
	}
	return n.RadiusKM
}

func (n *Nearest) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}

// InRange returns the helpers within radiusKM of loc, closest first.
// Helpers without an email are skipped.
func InRange(list []Helper, loc geo.Location, radiusKM float64) []Match {
	var out []Match
	for _, h := range list {
		if h.Email == "" {
			continue
		}
		d := geo.Distance(loc, h.Location())
		if d <= radiusKM {
			out = append(out, Match{Helper: h, DistanceKM: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKM < out[j].DistanceKM
	})
	return out
}
