package domain

// Leg is a single travel segment.
type Leg struct {
	DistanceKm float64
	TimeHours  float64
}

// TripRequest holds the validated optimization parameters for one call.
type TripRequest struct {
	Start            Coordinates
	End              Coordinates
	TMax             float64 // hours
	CostPerKmPerKg   float64
	MaxTruckWeightKg float64
	// Accepted as part of the request contract; not used when computing capacity.
	CurrTruckWeightKg float64
}

// Truck returns the truck described by the request.
func (r TripRequest) Truck() Truck {
	return Truck{MaxWeightKg: r.MaxTruckWeightKg, CurrentWeightKg: r.CurrTruckWeightKg}
}

// TripEvaluation is the outcome of pricing one A -> buy -> sell -> B trip.
type TripEvaluation struct {
	BuyWarehouseID  int64
	SellWarehouseID int64
	ItemID          int64

	TradedQuantity  float64
	GrossProfit     float64
	NetProfit       float64
	TransportCost   float64
	UnitProfitPerKg float64

	AToBuy    Leg
	BuyToSell Leg
	SellToB   Leg

	ExtraDistanceKm float64
	TotalTripTime   float64
}

// CandidateQuery parameterizes the geospatial candidate search.
type CandidateQuery struct {
	Src             Coordinates
	Dest            Coordinates
	MaxDetourMeters float64
	MaxLoadCapacity float64
	CostPerKm       float64
	Limit           int
}
