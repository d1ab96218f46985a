package ports

import "trade-route-service/internal/domain"

// Distance and travel duration between two locations as reported by a routing service.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Leg converts the routing units (meters, seconds) into kilometers and hours.
func (r DistanceResult) Leg() domain.Leg {
	return domain.Leg{
		DistanceKm: float64(r.DistanceMeters) / 1000.0,
		TimeHours:  float64(r.DurationSeconds) / 3600.0,
	}
}

// Point-to-point estimate used for every leg the routing matrix cannot answer.
// It never fails.
type FallbackEstimator interface {
	Leg(from, to domain.Coordinates) domain.Leg
}
