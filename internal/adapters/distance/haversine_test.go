package distance

import (
	"math"
	"testing"
	"trade-route-service/internal/domain"
	"trade-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
)

func TestHaversineSamePointIsZero(t *testing.T) {
	h := NewHaversineEstimator(DefaultAverageSpeedKmh)
	p := domain.Coordinates{Lat: 19.0760, Lon: 72.8777}

	leg := h.Leg(p, p)
	assert.Equal(t, 0.0, leg.DistanceKm)
	assert.Equal(t, 0.0, leg.TimeHours)
}

func TestHaversineKnownDistance(t *testing.T) {
	h := NewHaversineEstimator(DefaultAverageSpeedKmh)

	// One degree of latitude on a 6371 km sphere.
	want := 6371 * math.Pi / 180
	leg := h.Leg(domain.Coordinates{Lat: 0, Lon: 0}, domain.Coordinates{Lat: 1, Lon: 0})

	assert.InDelta(t, want, leg.DistanceKm, 1e-6)
	assert.InDelta(t, want/25.0, leg.TimeHours, 1e-9)
}

func TestHaversineSpeedOverride(t *testing.T) {
	slow := NewHaversineEstimator(25)
	fast := NewHaversineEstimator(50)
	a := domain.Coordinates{Lat: 28.7041, Lon: 77.1025}
	b := domain.Coordinates{Lat: 26.9124, Lon: 75.7873}

	ls, lf := slow.Leg(a, b), fast.Leg(a, b)
	assert.Equal(t, ls.DistanceKm, lf.DistanceKm)
	assert.InDelta(t, ls.TimeHours/2, lf.TimeHours, 1e-9)
}

func TestHaversineSatisfiesFallbackEstimator(t *testing.T) {
	var est ports.FallbackEstimator = NewHaversineEstimator(DefaultAverageSpeedKmh)
	a := domain.Coordinates{Lat: 0, Lon: 0}
	b := domain.Coordinates{Lat: 0, Lon: 1}

	assert.Equal(t, est.Leg(a, b).DistanceKm, est.Leg(b, a).DistanceKm)
}

func TestHaversineInvalidSpeedUsesDefault(t *testing.T) {
	h := NewHaversineEstimator(0)
	assert.Equal(t, DefaultAverageSpeedKmh, h.SpeedKmh)
}
