package helpers

import (
	"context"
	"errors"
	"testing"

	"distress/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	helpers []Helper
	err     error
	calls   int
}

func (f *fakeLister) ListHelpers(context.Context) ([]Helper, error) {
	f.calls++
	return f.helpers, f.err
}

var origin = geo.Location{Latitude: 12.9716, Longitude: 77.5946}

func TestStatic_DefaultsToPlaceholder(t *testing.T) {
	got, err := Static("").Recipient(context.Background(), origin)
	require.NoError(t, err)
	assert.Equal(t, PlaceholderRecipient, got)

	got, err = Static("ops@example.org").Recipient(context.Background(), origin)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.org", got)
}

func TestInRange_SortsByDistance(t *testing.T) {
	list := []Helper{
		{ID: 1, Email: "far@x.io", Latitude: 13.03, Longitude: 77.59},   // ~6.5km
		{ID: 2, Email: "near@x.io", Latitude: 12.975, Longitude: 77.595}, // <1km
		{ID: 3, Email: "gone@x.io", Latitude: 28.61, Longitude: 77.20},   // Delhi
		{ID: 4, Email: "", Latitude: 12.9716, Longitude: 77.5946},
	}
	got := InRange(list, origin, DefaultRadiusKM)
	require.Len(t, got, 2)
	assert.Equal(t, "near@x.io", got[0].Helper.Email)
	assert.Equal(t, "far@x.io", got[1].Helper.Email)
	assert.Less(t, got[0].DistanceKM, got[1].DistanceKM)
}

func TestNearest_PicksClosest(t *testing.T) {
	l := &fakeLister{helpers: []Helper{
		{Email: "far@x.io", Latitude: 13.03, Longitude: 77.59},
		{Email: "near@x.io", Latitude: 12.975, Longitude: 77.595},
	}}
	n := &Nearest{Lister: l}
	got, err := n.Recipient(context.Background(), origin)
	require.NoError(t, err)
	assert.Equal(t, "near@x.io", got)
	assert.Equal(t, 1, l.calls)
}

func TestNearest_NoneInRange(t *testing.T) {
	l := &fakeLister{helpers: []Helper{{Email: "far@x.io", Latitude: 28.61, Longitude: 77.20}}}

	_, err := (&Nearest{Lister: l, RadiusKM: 5}).Recipient(context.Background(), origin)
	assert.ErrorIs(t, err, ErrNoHelpers)

	got, err := (&Nearest{Lister: l, Fallback: Static("")}).Recipient(context.Background(), origin)
	require.NoError(t, err)
	assert.Equal(t, PlaceholderRecipient, got)
}

func TestNearest_ListError(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := (&Nearest{Lister: &fakeLister{err: boom}}).Recipient(context.Background(), origin)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "list helpers")
}
