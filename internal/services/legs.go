package services

import (
	"trade-route-service/internal/domain"
	"trade-route-service/internal/ports"
)

// legResolver prefers routing data from the matrix and falls back to the local
// estimator one leg at a time. The bool result reports whether the fallback was used.
type legResolver struct {
	matrix     *DistanceMatrix
	fallback   ports.FallbackEstimator
	start, end domain.Coordinates
}

func (r legResolver) direct() (domain.Leg, bool) {
	if leg, ok := r.matrix.StartToEnd(); ok {
		return leg, false
	}
	return r.fallback.Leg(r.start, r.end), true
}

func (r legResolver) fromStart(w domain.WarehouseStock) (domain.Leg, bool) {
	if leg, ok := r.matrix.FromStart(w.WarehouseID); ok {
		return leg, false
	}
	return r.fallback.Leg(r.start, w.Location), true
}

func (r legResolver) between(a, b domain.WarehouseStock) (domain.Leg, bool) {
	if leg, ok := r.matrix.Pair(a.WarehouseID, b.WarehouseID); ok {
		return leg, false
	}
	return r.fallback.Leg(a.Location, b.Location), true
}

func (r legResolver) toEnd(w domain.WarehouseStock) (domain.Leg, bool) {
	if leg, ok := r.matrix.ToEnd(w.WarehouseID); ok {
		return leg, false
	}
	return r.fallback.Leg(w.Location, r.end), true
}
