package distance

import (
	"context"
	"fmt"
	"trade-route-service/internal/domain"
	"trade-route-service/internal/platform/obs"
	"trade-route-service/internal/ports"
)

// CachedMatrixProvider serves matrices from a persistent pair cache when every
// off-diagonal pair is known, and otherwise issues one call to the wrapped
// provider and writes the returned cells back.
//
// Cache failures never fail the request: a read error is treated as a full miss
// and a write error is only logged.
type CachedMatrixProvider struct {
	next  ports.DistanceMatrixProvider
	cache ports.DistanceCache
}

func NewCachedMatrixProvider(next ports.DistanceMatrixProvider, cache ports.DistanceCache) *CachedMatrixProvider {
	return &CachedMatrixProvider{next: next, cache: cache}
}

func (c *CachedMatrixProvider) Matrix(
	ctx context.Context,
	locations []domain.Coordinates,
) (_ ports.Matrix, err error) {
	defer obs.Time(ctx, "distance.cache.Matrix")(&err)

	if c.cache == nil {
		return c.next.Matrix(ctx, locations)
	}

	keys := make([]string, len(locations))
	for i, loc := range locations {
		keys[i] = loc.Key()
	}

	seen := make(map[ports.PairKey]struct{})
	pairs := make([]ports.PairKey, 0, len(locations)*len(locations))
	for i := range keys {
		for j := range keys {
			if keys[i] == keys[j] {
				continue
			}
			p := ports.PairKey{Origin: keys[i], Destination: keys[j]}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	}

	hits, err := c.cache.GetMany(ctx, pairs)
	if err != nil {
		obs.Log(ctx).WithError(err).Warn("distance cache read failed; querying routing provider")
		hits = nil
	}

	if len(hits) == len(pairs) {
		return assemble(keys, hits), nil
	}

	fetched, err := c.next.Matrix(ctx, locations)
	if err != nil {
		return nil, fmt.Errorf("cached matrix: %w", err)
	}

	fresh := make(map[ports.PairKey]ports.DistanceResult, len(pairs))
	for i := range fetched {
		for j, cell := range fetched[i] {
			if cell == nil || j >= len(keys) || i >= len(keys) || keys[i] == keys[j] {
				continue
			}
			fresh[ports.PairKey{Origin: keys[i], Destination: keys[j]}] = *cell
		}
	}

	if len(fresh) > 0 {
		if err := c.cache.PutMany(ctx, fresh); err != nil {
			obs.Log(ctx).WithError(err).Warn("distance cache write failed")
		}
	}

	return fetched, nil
}

// assemble builds a matrix from cached pairs; identical locations get a zero cell.
func assemble(keys []string, hits map[ports.PairKey]ports.DistanceResult) ports.Matrix {
	out := make(ports.Matrix, len(keys))
	for i := range keys {
		out[i] = make([]*ports.DistanceResult, len(keys))
		for j := range keys {
			if keys[i] == keys[j] {
				out[i][j] = &ports.DistanceResult{}
				continue
			}
			r := hits[ports.PairKey{Origin: keys[i], Destination: keys[j]}]
			out[i][j] = &r
		}
	}
	return out
}
