package domain

// WarehouseStock is one warehouse×item row produced by the candidate query.
//
// Quantity is signed: a positive value is sellable supply (the truck buys here),
// a negative value is a shortfall (the truck sells here). Rows are immutable for
// the duration of one optimization call.
type WarehouseStock struct {
	WarehouseID int64
	ItemID      int64
	Location    Coordinates
	Quantity    float64
	UnitWeight  float64
	UnitVolume  float64
	BuyPrice    float64
	SellPrice   float64

	// Ranking score assigned by the candidate query; diagnostic only.
	DemandMetric float64
}

func (w WarehouseStock) IsSupplier() bool { return w.Quantity > 0 }

func (w WarehouseStock) IsDemander() bool { return w.Quantity < 0 }
