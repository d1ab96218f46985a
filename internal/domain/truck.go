package domain

import "math"

// Truck describes the load limits of the vehicle making the trip.
type Truck struct {
	MaxWeightKg     float64
	CurrentWeightKg float64
}

// CapacityLimit returns how many units of the given weight fit in the truck.
// The current load is deliberately not subtracted: every trade is priced as if
// the truck starts empty.
func (t Truck) CapacityLimit(unitWeight float64) float64 {
	if unitWeight <= 0 {
		return 0
	}
	return t.MaxWeightKg / unitWeight
}

// TradableUnits floors the smallest of supply, demand and capacity to whole units.
// Fractional units are not tradeable.
func (t Truck) TradableUnits(supply, demand, unitWeight float64) float64 {
	q := math.Min(math.Min(supply, math.Abs(demand)), t.CapacityLimit(unitWeight))
	if q <= 0 || math.IsNaN(q) {
		return 0
	}
	return math.Floor(q)
}
