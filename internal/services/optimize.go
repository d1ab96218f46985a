package services

import (
	"context"
	"errors"
	"fmt"
	"trade-route-service/internal/domain"
	"trade-route-service/internal/platform/obs"
	"trade-route-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// Policy defaults. Each can be overridden through Optimizer fields.
const (
	DefaultMaxDetourMeters = 50000.0
	DefaultCandidateLimit  = 50
)

var (
	// ErrNoCandidateSource is returned when no candidate repository is configured.
	ErrNoCandidateSource = errors.New("no candidate data source configured")
	// ErrCandidatesUnavailable wraps failures of the candidate repository.
	ErrCandidatesUnavailable = errors.New("candidate source unavailable")
)

// Optimizer runs one trade optimization: load candidates, build the routing
// matrix once, match pairs and rank them.
type Optimizer struct {
	Candidates ports.CandidateRepository
	// Optional. Without it every leg uses Fallback.
	Routing  ports.DistanceMatrixProvider
	Fallback ports.FallbackEstimator

	MaxDetourMeters float64
	CandidateLimit  int
	TopK            int
	Workers         int
}

func (o *Optimizer) candidateQuery(req domain.TripRequest) domain.CandidateQuery {
	detour := o.MaxDetourMeters
	if detour <= 0 {
		detour = DefaultMaxDetourMeters
	}
	limit := o.CandidateLimit
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	return domain.CandidateQuery{
		Src:             req.Start,
		Dest:            req.End,
		MaxDetourMeters: detour,
		MaxLoadCapacity: req.MaxTruckWeightKg,
		CostPerKm:       req.CostPerKmPerKg * req.MaxTruckWeightKg,
		Limit:           limit,
	}
}

// Optimize returns the most profitable trips for req. Routing failures degrade
// to haversine estimates; only a missing or failing candidate source and
// context cancellation are returned as errors.
func (o *Optimizer) Optimize(ctx context.Context, req domain.TripRequest) (_ MatchResult, err error) {
	defer obs.Time(ctx, "optimize")(&err)

	if o.Candidates == nil {
		return MatchResult{}, ErrNoCandidateSource
	}
	if o.Fallback == nil {
		return MatchResult{}, errors.New("optimize: fallback estimator is required")
	}

	candidates, err := o.Candidates.LoadCandidates(ctx, o.candidateQuery(req))
	if err != nil {
		return MatchResult{}, fmt.Errorf("optimize: %w: %w", ErrCandidatesUnavailable, err)
	}

	if len(candidates) == 0 {
		obs.Log(ctx).Info("no candidate warehouses found")
		return MatchResult{Pairs: []domain.TripEvaluation{}}, nil
	}

	var matrix *DistanceMatrix
	if o.Routing != nil {
		matrix, err = NewDistanceMatrix(ctx, o.Routing, candidates, req.Start, req.End)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return MatchResult{}, ctxErr
			}
			obs.DistanceFallbacks.WithLabelValues("matrix").Inc()
			obs.Log(ctx).WithError(err).WithFields(logrus.Fields{
				"candidates": len(candidates),
			}).Warn("routing matrix unavailable; using haversine estimates")
			matrix = nil
		}
	}

	res, err := FindProfitablePairs(ctx, req, candidates, MatchOptions{
		Fallback: o.Fallback,
		Matrix:   matrix,
		Workers:  o.Workers,
		TopK:     o.TopK,
	})
	if err != nil {
		return MatchResult{}, fmt.Errorf("optimize: %w", err)
	}

	return res, nil
}
