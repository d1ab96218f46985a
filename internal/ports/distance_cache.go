package ports

import "context"

// PairKey identifies a directed origin -> destination lookup in a persistent cache.
type PairKey struct {
	Origin      string
	Destination string
}

// Persistent store of routing results shared across requests.
type DistanceCache interface {
	// Return cached results for the requested pairs; misses are simply absent.
	GetMany(ctx context.Context, pairs []PairKey) (map[PairKey]DistanceResult, error)
	// Store results, overwriting existing entries.
	PutMany(ctx context.Context, results map[PairKey]DistanceResult) error
}
