package dto

import (
	"trade-route-service/internal/domain"
	"trade-route-service/internal/services"
)

// Locations are [lat, lon].
type OptimizeRequest struct {
	StartLocation     []float64 `json:"start_location" validate:"required,latlon"`
	EndLocation       []float64 `json:"end_location" validate:"required,latlon"`
	TMax              float64   `json:"t_max" validate:"gt=0"`
	CostPerKmPerKg    float64   `json:"cost_per_km_per_kg" validate:"gt=0"`
	MaxTruckWeightKg  float64   `json:"max_truck_weight_kg" validate:"gt=0"`
	CurrTruckWeightKg float64   `json:"curr_truck_weight_kg" validate:"gte=0"`
}

type TripResponse struct {
	BuyWarehouseID  int64   `json:"buy_warehouse_id"`
	SellWarehouseID int64   `json:"sell_warehouse_id"`
	ItemID          int64   `json:"item_id"`
	TradedQuantity  float64 `json:"traded_quantity"`
	GrossProfit     float64 `json:"gross_profit"`
	NetProfit       float64 `json:"net_profit"`
	TransportCost   float64 `json:"transport_cost"`
	UnitProfitPerKg float64 `json:"unit_profit_per_kg"`

	// Leg times in hours, leg distances in km. A is the start, Wb the buy
	// warehouse, Ws the sell warehouse, B the end.
	TAToBuy         float64 `json:"T_AWb"`
	TBuyToSell      float64 `json:"T_WbWs"`
	TSellToB        float64 `json:"T_WsB"`
	DAToBuy         float64 `json:"D_AWb"`
	DBuyToSell      float64 `json:"D_WbWs"`
	DSellToB        float64 `json:"D_WsB"`
	ExtraDistanceKm float64 `json:"extra_distance_km"`
	TotalTripTime   float64 `json:"total_trip_time"`
}

type OptimizeResponse struct {
	ProfitablePairs []TripResponse          `json:"profitable_pairs"`
	Stats           services.RejectionStats `json:"stats"`
}

// TripRequest converts a validated request into the engine input.
func (req *OptimizeRequest) TripRequest() domain.TripRequest {
	return domain.TripRequest{
		Start:             domain.Coordinates{Lat: req.StartLocation[0], Lon: req.StartLocation[1]},
		End:               domain.Coordinates{Lat: req.EndLocation[0], Lon: req.EndLocation[1]},
		TMax:              req.TMax,
		CostPerKmPerKg:    req.CostPerKmPerKg,
		MaxTruckWeightKg:  req.MaxTruckWeightKg,
		CurrTruckWeightKg: req.CurrTruckWeightKg,
	}
}

func NewOptimizeResponse(res services.MatchResult) OptimizeResponse {
	out := OptimizeResponse{
		ProfitablePairs: make([]TripResponse, 0, len(res.Pairs)),
		Stats:           res.Stats,
	}
	for _, p := range res.Pairs {
		out.ProfitablePairs = append(out.ProfitablePairs, TripResponse{
			BuyWarehouseID:  p.BuyWarehouseID,
			SellWarehouseID: p.SellWarehouseID,
			ItemID:          p.ItemID,
			TradedQuantity:  p.TradedQuantity,
			GrossProfit:     p.GrossProfit,
			NetProfit:       p.NetProfit,
			TransportCost:   p.TransportCost,
			UnitProfitPerKg: p.UnitProfitPerKg,
			TAToBuy:         p.AToBuy.TimeHours,
			TBuyToSell:      p.BuyToSell.TimeHours,
			TSellToB:        p.SellToB.TimeHours,
			DAToBuy:         p.AToBuy.DistanceKm,
			DBuyToSell:      p.BuyToSell.DistanceKm,
			DSellToB:        p.SellToB.DistanceKm,
			ExtraDistanceKm: p.ExtraDistanceKm,
			TotalTripTime:   p.TotalTripTime,
		})
	}
	return out
}
