package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"trade-route-service/internal/platform/obs"
	"trade-route-service/internal/ports"
)

// SQLDistanceCache is a Postgres-backed cache for origin->destination routing results.
// Keys are coordinate strings produced by domain.Coordinates.Key.
type SQLDistanceCache struct {
	DB *sql.DB
}

func NewSQLDistanceCache(db *sql.DB) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db}
}

// Fetch cached results for many directed pairs in one round trip.
func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	pairs []ports.PairKey,
) (_ map[ports.PairKey]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	if len(pairs) == 0 {
		return map[ports.PairKey]ports.DistanceResult{}, nil
	}

	origins := make([]string, 0, len(pairs))
	destinations := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if strings.TrimSpace(p.Origin) == "" || strings.TrimSpace(p.Destination) == "" {
			return nil, fmt.Errorf("get distance cache: empty key in pair %+v", p)
		}
		origins = append(origins, p.Origin)
		destinations = append(destinations, p.Destination)
	}

	q := `
	SELECT c.origin, c.destination, c.distance_meters, c.duration_seconds
    FROM distance_cache c
    JOIN unnest($1::text[], $2::text[]) AS k(origin, destination)
        ON c.origin = k.origin
        AND c.destination = k.destination;
	`

	rows, err := s.DB.QueryContext(ctx, q, origins, destinations)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[ports.PairKey]ports.DistanceResult, len(pairs))
	for rows.Next() {
		var key ports.PairKey
		var meters, seconds int
		if err := rows.Scan(&key.Origin, &key.Destination, &meters, &seconds); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[key] = ports.DistanceResult{
			DistanceMeters:  meters,
			DurationSeconds: seconds,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many routing results in a single transaction.
func (s *SQLDistanceCache) PutMany(
	ctx context.Context,
	results map[ports.PairKey]ports.DistanceResult,
) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (origin, destination, distance_meters, duration_seconds, updated_at)
    VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		updated_at = EXCLUDED.updated_at;
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, r := range results {
		if strings.TrimSpace(key.Origin) == "" || strings.TrimSpace(key.Destination) == "" {
			return fmt.Errorf("insert distance cache: empty key in pair %+v", key)
		}

		if _, err := stmt.ExecContext(ctx, key.Origin, key.Destination, r.DistanceMeters, r.DurationSeconds); err != nil {
			return fmt.Errorf("insert distance cache %q -> %q: %w", key.Origin, key.Destination, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}
