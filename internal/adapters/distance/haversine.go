package distance

import (
	"trade-route-service/internal/domain"

	"github.com/umahmood/haversine"
)

// DefaultAverageSpeedKmh is the assumed average driving speed used when no
// routing data is available. It models congested mixed urban/highway traffic
// and is a tunable estimate, not a measured constant.
const DefaultAverageSpeedKmh = 25.0

// HaversineEstimator approximates travel by great-circle distance (mean Earth
// radius 6371 km) driven at a fixed average speed. It never fails.
type HaversineEstimator struct {
	SpeedKmh float64
}

func NewHaversineEstimator(speedKmh float64) *HaversineEstimator {
	if speedKmh <= 0 {
		speedKmh = DefaultAverageSpeedKmh
	}
	return &HaversineEstimator{SpeedKmh: speedKmh}
}

// Leg returns the estimated distance and time between two points.
func (h *HaversineEstimator) Leg(from, to domain.Coordinates) domain.Leg {
	_, km := haversine.Distance(
		haversine.Coord{Lat: from.Lat, Lon: from.Lon},
		haversine.Coord{Lat: to.Lat, Lon: to.Lon},
	)

	speed := h.SpeedKmh
	if speed <= 0 {
		speed = DefaultAverageSpeedKmh
	}
	return domain.Leg{DistanceKm: km, TimeHours: km / speed}
}
