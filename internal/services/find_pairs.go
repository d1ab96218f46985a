package services

import (
	"context"
	"errors"
	"math"
	"trade-route-service/internal/domain"
	"trade-route-service/internal/platform/obs"
	"trade-route-service/internal/ports"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type rejectReason int

const (
	accepted rejectReason = iota
	rejectTime
	rejectQuantity
	rejectProfit
)

func (r rejectReason) String() string {
	switch r {
	case rejectTime:
		return "time"
	case rejectQuantity:
		return "quantity"
	case rejectProfit:
		return "profit"
	default:
		return "accepted"
	}
}

// RejectionStats counts how pairs were handled. It is diagnostic only and
// never changes which trips are returned.
type RejectionStats struct {
	Evaluated          int  `json:"evaluated"`
	TimeInfeasible     int  `json:"time_infeasible"`
	QuantityInfeasible int  `json:"quantity_infeasible"`
	Unprofitable       int  `json:"unprofitable"`
	Accepted           int  `json:"accepted"`
	FallbackLegs       int  `json:"fallback_legs"`
	MatrixAvailable    bool `json:"matrix_available"`
}

func (s *RejectionStats) add(o RejectionStats) {
	s.Evaluated += o.Evaluated
	s.TimeInfeasible += o.TimeInfeasible
	s.QuantityInfeasible += o.QuantityInfeasible
	s.Unprofitable += o.Unprofitable
	s.Accepted += o.Accepted
	s.FallbackLegs += o.FallbackLegs
}

func (s *RejectionStats) record(r rejectReason) {
	s.Evaluated++
	switch r {
	case rejectTime:
		s.TimeInfeasible++
	case rejectQuantity:
		s.QuantityInfeasible++
	case rejectProfit:
		s.Unprofitable++
	default:
		s.Accepted++
	}
}

// MatchResult is the ranked output of one optimization call.
type MatchResult struct {
	Pairs []domain.TripEvaluation
	Stats RejectionStats
}

// MatchOptions tunes the matching engine.
type MatchOptions struct {
	// Required. Used for every leg the matrix cannot answer.
	Fallback ports.FallbackEstimator
	// Optional; nil means every leg uses the fallback.
	Matrix *DistanceMatrix
	// Number of goroutines sharing the supplier list; values < 1 mean 1.
	Workers int
	// Number of trips kept after ranking; values < 1 mean DefaultTopK.
	TopK int
}

// FindProfitablePairs prices every supplier/demander pair that trades the same
// item and returns the most profitable trips.
//
// A trip is A -> supplier -> demander -> B. Pairs are rejected, in this order,
// when the trip exceeds TMax, when no whole unit can be carried, or when the
// net profit is not positive.
//
// The pair loop is O(S×D). The candidate set is bounded upstream by the
// candidate query limit; growth must be controlled there.
//
// The only error is context cancellation. No candidates yields an empty result.
func FindProfitablePairs(
	ctx context.Context,
	req domain.TripRequest,
	candidates []domain.WarehouseStock,
	opts MatchOptions,
) (MatchResult, error) {
	if opts.Fallback == nil {
		return MatchResult{}, errors.New("find profitable pairs: fallback estimator is required")
	}

	suppliers := make([]domain.WarehouseStock, 0, len(candidates))
	demanders := make([]domain.WarehouseStock, 0, len(candidates))
	for _, c := range candidates {
		switch {
		case c.IsSupplier():
			suppliers = append(suppliers, c)
		case c.IsDemander():
			demanders = append(demanders, c)
		}
	}

	res := legResolver{
		matrix:   opts.Matrix,
		fallback: opts.Fallback,
		start:    req.Start,
		end:      req.End,
	}
	stats := RejectionStats{MatrixAvailable: opts.Matrix != nil}

	if len(suppliers) == 0 || len(demanders) == 0 {
		return MatchResult{Pairs: []domain.TripEvaluation{}, Stats: stats}, nil
	}

	direct, fellBack := res.direct()
	if fellBack {
		stats.FallbackLegs++
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(suppliers) {
		workers = len(suppliers)
	}

	// Each worker owns a contiguous supplier shard and its own buffers; shards
	// are merged in order so the output does not depend on scheduling.
	type shard struct {
		pairs []domain.TripEvaluation
		stats RejectionStats
	}
	shards := make([]shard, workers)
	chunk := (len(suppliers) + workers - 1) / workers

	debug := logrus.IsLevelEnabled(logrus.DebugLevel)

	g, gctx := errgroup.WithContext(ctx)
	for wi := 0; wi < workers; wi++ {
		wi := wi
		lo := wi * chunk
		hi := min(lo+chunk, len(suppliers))
		if lo >= hi {
			continue
		}

		g.Go(func() error {
			out := &shards[wi]
			for _, s := range suppliers[lo:hi] {
				if err := gctx.Err(); err != nil {
					return err
				}
				for _, d := range demanders {
					if s.ItemID != d.ItemID {
						continue
					}

					trip, reason, fallbacks := evaluatePair(req, res, direct, s, d)
					out.stats.FallbackLegs += fallbacks
					out.stats.record(reason)

					if reason != accepted {
						if debug {
							obs.Log(ctx).WithFields(logrus.Fields{
								"buy_warehouse_id":  s.WarehouseID,
								"sell_warehouse_id": d.WarehouseID,
								"item_id":           s.ItemID,
								"reason":            reason.String(),
							}).Debug("skipping pair")
						}
						continue
					}
					out.pairs = append(out.pairs, trip)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return MatchResult{}, err
	}

	var survivors []domain.TripEvaluation
	for _, sh := range shards {
		survivors = append(survivors, sh.pairs...)
		stats.add(sh.stats)
	}

	record(stats)

	obs.Log(ctx).WithFields(logrus.Fields{
		"suppliers":           len(suppliers),
		"demanders":           len(demanders),
		"evaluated":           stats.Evaluated,
		"accepted":            stats.Accepted,
		"time_infeasible":     stats.TimeInfeasible,
		"quantity_infeasible": stats.QuantityInfeasible,
		"unprofitable":        stats.Unprofitable,
		"fallback_legs":       stats.FallbackLegs,
	}).Info("pair matching done")

	return MatchResult{Pairs: RankPairs(survivors, opts.TopK), Stats: stats}, nil
}

// evaluatePair prices one trip. It returns the number of legs that used the fallback.
func evaluatePair(
	req domain.TripRequest,
	res legResolver,
	direct domain.Leg,
	supplier, demander domain.WarehouseStock,
) (domain.TripEvaluation, rejectReason, int) {
	fallbacks := 0
	count := func(leg domain.Leg, fellBack bool) domain.Leg {
		if fellBack {
			fallbacks++
		}
		return leg
	}

	aToBuy := count(res.fromStart(supplier))
	buyToSell := count(res.between(supplier, demander))
	sellToB := count(res.toEnd(demander))

	totalTime := aToBuy.TimeHours + buyToSell.TimeHours + sellToB.TimeHours
	if totalTime > req.TMax {
		return domain.TripEvaluation{}, rejectTime, fallbacks
	}

	qty := req.Truck().TradableUnits(supplier.Quantity, demander.Quantity, supplier.UnitWeight)
	if qty <= 0 {
		return domain.TripEvaluation{}, rejectQuantity, fallbacks
	}

	unitGross := math.Abs(demander.SellPrice - supplier.BuyPrice)
	gross := unitGross * qty
	extraKm := (aToBuy.DistanceKm + buyToSell.DistanceKm + sellToB.DistanceKm) - direct.DistanceKm
	transport := extraKm * req.CostPerKmPerKg * (qty * supplier.UnitWeight)
	net := gross - transport

	if !(net > 0) {
		return domain.TripEvaluation{}, rejectProfit, fallbacks
	}

	return domain.TripEvaluation{
		BuyWarehouseID:  supplier.WarehouseID,
		SellWarehouseID: demander.WarehouseID,
		ItemID:          supplier.ItemID,
		TradedQuantity:  qty,
		GrossProfit:     gross,
		NetProfit:       net,
		TransportCost:   transport,
		UnitProfitPerKg: unitGross / supplier.UnitWeight,
		AToBuy:          aToBuy,
		BuyToSell:       buyToSell,
		SellToB:         sellToB,
		ExtraDistanceKm: extraKm,
		TotalTripTime:   totalTime,
	}, accepted, fallbacks
}

func record(s RejectionStats) {
	obs.PairsEvaluated.Add(float64(s.Evaluated))
	obs.PairsRejected.WithLabelValues(rejectTime.String()).Add(float64(s.TimeInfeasible))
	obs.PairsRejected.WithLabelValues(rejectQuantity.String()).Add(float64(s.QuantityInfeasible))
	obs.PairsRejected.WithLabelValues(rejectProfit.String()).Add(float64(s.Unprofitable))
	if s.FallbackLegs > 0 {
		obs.DistanceFallbacks.WithLabelValues("leg").Add(float64(s.FallbackLegs))
	}
}
