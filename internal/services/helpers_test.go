package services

import (
	"trade-route-service/internal/adapters/distance"
	"trade-route-service/internal/domain"
)

// kmPerDegree is the length of one degree of latitude on a 6371 km sphere.
const kmPerDegree = 6371 * 3.141592653589793 / 180

var (
	pointA = domain.Coordinates{Lat: 0, Lon: 0}
	// 100 km north of pointA by haversine.
	pointB = domain.Coordinates{Lat: 100 / kmPerDegree, Lon: 0}
)

func fallback() *distance.HaversineEstimator {
	return distance.NewHaversineEstimator(distance.DefaultAverageSpeedKmh)
}

func baseRequest() domain.TripRequest {
	return domain.TripRequest{
		Start:            pointA,
		End:              pointB,
		TMax:             100,
		CostPerKmPerKg:   0.01,
		MaxTruckWeightKg: 1000,
	}
}

func supplierAt(id, item int64, loc domain.Coordinates, qty, weight, buy float64) domain.WarehouseStock {
	return domain.WarehouseStock{
		WarehouseID: id,
		ItemID:      item,
		Location:    loc,
		Quantity:    qty,
		UnitWeight:  weight,
		UnitVolume:  0.1,
		BuyPrice:    buy,
		SellPrice:   buy,
	}
}

func demanderAt(id, item int64, loc domain.Coordinates, qty, sell float64) domain.WarehouseStock {
	return domain.WarehouseStock{
		WarehouseID: id,
		ItemID:      item,
		Location:    loc,
		Quantity:    qty,
		UnitWeight:  1,
		UnitVolume:  0.1,
		BuyPrice:    sell,
		SellPrice:   sell,
	}
}

// scenarioCandidates is one supplier at A and one demander at B trading item 1.
func scenarioCandidates(buy, sell float64) []domain.WarehouseStock {
	return []domain.WarehouseStock{
		supplierAt(1, 1, pointA, 100, 2, buy),
		demanderAt(2, 1, pointB, -100, sell),
	}
}
