package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres/PostGIS schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createExtensionQuery := `CREATE EXTENSION IF NOT EXISTS postgis;`

	createItemsQuery := `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		unit_weight DOUBLE PRECISION NOT NULL CHECK (unit_weight > 0),
		unit_volume DOUBLE PRECISION NOT NULL CHECK (unit_volume > 0),
		buy_price DOUBLE PRECISION NOT NULL,
		sell_price DOUBLE PRECISION NOT NULL
	);
	`

	createWarehousesQuery := `
	CREATE TABLE IF NOT EXISTS warehouses (
		id INTEGER PRIMARY KEY,
		location GEOGRAPHY(Point, 4326) NOT NULL
	);
	`

	createWarehouseItemsQuery := `
	CREATE TABLE IF NOT EXISTS warehouse_items (
		warehouse_id INTEGER NOT NULL REFERENCES warehouses(id) ON DELETE CASCADE,
		item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		quantity DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (warehouse_id, item_id)
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (origin, destination)
    );
	`

	createLocationIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_warehouses_location
    ON warehouses USING GIST (location);
	`

	statements := []string{
		createExtensionQuery,
		createItemsQuery,
		createWarehousesQuery,
		createWarehouseItemsQuery,
		createDistanceCacheQuery,
		createLocationIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ItemSeed struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	UnitWeight float64 `json:"unit_weight"`
	UnitVolume float64 `json:"unit_volume"`
	BuyPrice   float64 `json:"buy_price"`
	SellPrice  float64 `json:"sell_price"`
}

type StockSeed struct {
	ItemID   int64   `json:"item_id"`
	Quantity float64 `json:"quantity"`
}

type WarehouseSeed struct {
	ID    int64       `json:"id"`
	Lat   float64     `json:"lat"`
	Lon   float64     `json:"lon"`
	Stock []StockSeed `json:"stock"`
}

type Seed struct {
	Items      []ItemSeed      `json:"items"`
	Warehouses []WarehouseSeed `json:"warehouses"`
}

// ParseSeed decodes and validates seed data.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	items := make(map[int64]struct{}, len(seed.Items))
	for i, it := range seed.Items {
		if it.ID <= 0 {
			return nil, fmt.Errorf("parse seed: invalid item id at index %d: %d", i+1, it.ID)
		}
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("parse seed: item %d: name cannot be empty", it.ID)
		}
		if it.UnitWeight <= 0 || it.UnitVolume <= 0 {
			return nil, fmt.Errorf("parse seed: item %d: unit weight and volume must be positive", it.ID)
		}
		if _, dup := items[it.ID]; dup {
			return nil, fmt.Errorf("parse seed: duplicate item id %d", it.ID)
		}
		items[it.ID] = struct{}{}
	}

	warehouses := make(map[int64]struct{}, len(seed.Warehouses))
	for i, w := range seed.Warehouses {
		if w.ID <= 0 {
			return nil, fmt.Errorf("parse seed: invalid warehouse id at index %d: %d", i+1, w.ID)
		}
		if w.Lat < -90 || w.Lat > 90 || w.Lon < -180 || w.Lon > 180 {
			return nil, fmt.Errorf("parse seed: warehouse %d: coordinates out of range (%v, %v)", w.ID, w.Lat, w.Lon)
		}
		if _, dup := warehouses[w.ID]; dup {
			return nil, fmt.Errorf("parse seed: duplicate warehouse id %d", w.ID)
		}
		warehouses[w.ID] = struct{}{}

		for _, s := range w.Stock {
			if _, ok := items[s.ItemID]; !ok {
				return nil, fmt.Errorf("parse seed: warehouse %d references unknown item %d", w.ID, s.ItemID)
			}
		}
	}

	return &seed, nil
}

// Populate the database with items, warehouses and stock from a JSON file.
// Existing rows are replaced.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed warehouses: read %q: %w", jsonPath, err)
	}

	seed, err := ParseSeed(data)
	if err != nil {
		return fmt.Errorf("seed warehouses: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed warehouses: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM warehouse_items;`,
		`DELETE FROM warehouses;`,
		`DELETE FROM items;`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("seed warehouses: clear tables: %w", err)
		}
	}

	for _, it := range seed.Items {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO items (id, name, unit_weight, unit_volume, buy_price, sell_price)
		VALUES ($1, $2, $3, $4, $5, $6);
		`, it.ID, it.Name, it.UnitWeight, it.UnitVolume, it.BuyPrice, it.SellPrice)
		if err != nil {
			return fmt.Errorf("seed warehouses: insert item id=%d: %w", it.ID, err)
		}
	}

	for _, w := range seed.Warehouses {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO warehouses (id, location)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography);
		`, w.ID, w.Lon, w.Lat)
		if err != nil {
			return fmt.Errorf("seed warehouses: insert warehouse id=%d: %w", w.ID, err)
		}

		for _, s := range w.Stock {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO warehouse_items (warehouse_id, item_id, quantity)
			VALUES ($1, $2, $3);
			`, w.ID, s.ItemID, s.Quantity)
			if err != nil {
				return fmt.Errorf("seed warehouses: insert stock warehouse=%d item=%d: %w", w.ID, s.ItemID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed warehouses: commit tx: %w", err)
	}

	return nil
}
