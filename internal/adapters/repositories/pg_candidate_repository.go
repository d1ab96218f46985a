package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"trade-route-service/internal/domain"
	"trade-route-service/internal/platform/obs"
)

// PostGIS-backed implementation of the CandidateRepository port.
//
// Warehouses are kept when the detour src -> w -> dest exceeds the direct
// src -> dest distance by at most MaxDetourMeters. Stock rows are ranked by a
// demand metric: the tradeable margin (bounded by stock and truck capacity)
// minus a weighted distance penalty that favours warehouses near the start.
type PGCandidateRepository struct{ DB *sql.DB }

func NewPGCandidateRepository(db *sql.DB) *PGCandidateRepository {
	return &PGCandidateRepository{DB: db}
}

const loadCandidatesQuery = `
WITH filtered_warehouses AS (
	SELECT
		w.id,
		w.location
	FROM warehouses w
	WHERE
		ST_Distance(
			w.location,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
		) +
		ST_Distance(
			w.location,
			ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography
		) -
		ST_Distance(
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography
		)
		<= $5
)
SELECT
	wi.warehouse_id,
	wi.quantity,
	ST_Y(f.location::geometry) AS lat,
	ST_X(f.location::geometry) AS lon,
	i.id AS item_id,
	i.unit_weight,
	i.unit_volume,
	i.sell_price,
	i.buy_price,
	LEAST(
		wi.quantity * (i.sell_price - i.buy_price),
		$6 * (i.sell_price - i.buy_price) / i.unit_weight
	) -
	(
		(
			ST_DistanceSphere(ST_SetSRID(ST_MakePoint($1, $2), 4326), f.location::geometry) * 1.25 +
			ST_DistanceSphere(ST_SetSRID(ST_MakePoint($3, $4), 4326), f.location::geometry) * 0.75
		) / 2
	) * $7 AS demand_metric
FROM warehouse_items wi
JOIN items i
	ON wi.item_id = i.id
JOIN filtered_warehouses f
	ON wi.warehouse_id = f.id
WHERE wi.quantity <> 0
ORDER BY demand_metric DESC
LIMIT $8;
`

// Return up to q.Limit stock rows along the src -> dest corridor.
func (r *PGCandidateRepository) LoadCandidates(
	ctx context.Context,
	q domain.CandidateQuery,
) (_ []domain.WarehouseStock, err error) {
	defer obs.Time(ctx, "candidates.Load")(&err)

	if r.DB == nil {
		return nil, errors.New("pg candidate repository: DB is nil")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("load candidates: limit must be positive, got %d", q.Limit)
	}

	rows, err := r.DB.QueryContext(ctx, loadCandidatesQuery,
		q.Src.Lon, q.Src.Lat,
		q.Dest.Lon, q.Dest.Lat,
		q.MaxDetourMeters,
		q.MaxLoadCapacity,
		q.CostPerKm,
		q.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load candidates: query warehouses: %w", err)
	}
	defer rows.Close()

	out := make([]domain.WarehouseStock, 0, q.Limit)
	for rows.Next() {
		var w domain.WarehouseStock
		err := rows.Scan(
			&w.WarehouseID,
			&w.Quantity,
			&w.Location.Lat,
			&w.Location.Lon,
			&w.ItemID,
			&w.UnitWeight,
			&w.UnitVolume,
			&w.SellPrice,
			&w.BuyPrice,
			&w.DemandMetric,
		)
		if err != nil {
			return nil, fmt.Errorf("load candidates: scan row: %w", err)
		}
		out = append(out, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load candidates: row iteration: %w", err)
	}

	return out, nil
}
