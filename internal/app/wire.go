// Package app assembles the optimizer from configuration. It is shared by the
// HTTP server and the dbtool so both run the same stack.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"trade-route-service/internal/adapters/cache"
	"trade-route-service/internal/adapters/distance"
	"trade-route-service/internal/adapters/repositories"
	"trade-route-service/internal/config"
	"trade-route-service/internal/platform/obs"
	"trade-route-service/internal/ports"
	"trade-route-service/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Routing modes reported by /health.
const (
	RoutingORS       = "ors"
	RoutingHaversine = "haversine"
)

// Stack is a wired optimizer plus the resources it owns.
type Stack struct {
	Optimizer *services.Optimizer
	Routing   string

	closers []func() error
}

// Close releases resources opened by Build. The database is owned by the caller.
func (s *Stack) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build wires the candidate repository, the routing provider (ORS behind the
// configured cache, or none) and the fallback estimator.
func Build(ctx context.Context, cfg *config.Config, db *sql.DB) (*Stack, error) {
	st := &Stack{
		Optimizer: &services.Optimizer{
			Candidates:      repositories.NewPGCandidateRepository(db),
			Fallback:        distance.NewHaversineEstimator(cfg.FallbackSpeedKmh),
			MaxDetourMeters: cfg.MaxDetourMeters,
			CandidateLimit:  cfg.CandidateLimit,
			TopK:            cfg.TopK,
			Workers:         cfg.MatchWorkers,
		},
		Routing: RoutingHaversine,
	}

	if !cfg.PreciseRouting() {
		obs.Log(ctx).Warn("ORS_API_KEY not set; distances are haversine estimates")
		return st, nil
	}

	ors, err := distance.NewORSMatrixProvider(cfg.ORSAPIKey, distance.ORSOptions{
		BaseURL:       cfg.ORSBaseURL,
		Profile:       cfg.ORSProfile,
		Timeout:       cfg.ORSTimeout,
		RatePerMinute: cfg.ORSRatePerMinute,
	})
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	dc, err := st.distanceCache(ctx, cfg, db)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("build: %w", err)
	}

	var routing ports.DistanceMatrixProvider = ors
	if dc != nil {
		routing = distance.NewCachedMatrixProvider(ors, dc)
	}

	st.Optimizer.Routing = routing
	st.Routing = RoutingORS

	obs.Log(ctx).WithFields(logrus.Fields{
		"profile": cfg.ORSProfile,
		"cache":   cfg.CacheBackend,
	}).Info("precise routing enabled")

	return st, nil
}

func (s *Stack) distanceCache(ctx context.Context, cfg *config.Config, db *sql.DB) (ports.DistanceCache, error) {
	switch cfg.CacheBackend {
	case config.CachePostgres:
		return cache.NewSQLDistanceCache(db), nil
	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		s.closers = append(s.closers, rdb.Close)
		return cache.NewRedisDistanceCache(rdb, cfg.RedisTTL), nil
	default:
		return nil, nil
	}
}
