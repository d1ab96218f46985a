package services

import (
	"context"
	"math/rand"
	"slices"
	"testing"
	"trade-route-service/internal/adapters/distance"
	"trade-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProfitablePairsNoCandidates(t *testing.T) {
	res, err := FindProfitablePairs(context.Background(), baseRequest(), nil, MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	require.NotNil(t, res.Pairs)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, 0, res.Stats.Evaluated)
}

func TestFindProfitablePairsSingleTrade(t *testing.T) {
	// 1000 kg / 2 kg = 500 units of capacity, so the 100 units of stock bind.
	res, err := FindProfitablePairs(context.Background(), baseRequest(), scenarioCandidates(50, 80), MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)

	p := res.Pairs[0]
	assert.Equal(t, int64(1), p.BuyWarehouseID)
	assert.Equal(t, int64(2), p.SellWarehouseID)
	assert.Equal(t, int64(1), p.ItemID)
	assert.Equal(t, 100.0, p.TradedQuantity)
	assert.Equal(t, 3000.0, p.GrossProfit)
	assert.Greater(t, p.NetProfit, 0.0)
	assert.InDelta(t, 15.0, p.UnitProfitPerKg, 1e-9)

	assert.Equal(t, 0.0, p.AToBuy.DistanceKm)
	assert.InDelta(t, 100.0, p.BuyToSell.DistanceKm, 1e-6)
	assert.Equal(t, 0.0, p.SellToB.DistanceKm)
	assert.InDelta(t, 4.0, p.TotalTripTime, 1e-6)
	assert.InDelta(t, 0.0, p.ExtraDistanceKm, 1e-9)

	assert.Equal(t, 1, res.Stats.Evaluated)
	assert.Equal(t, 1, res.Stats.Accepted)
	assert.False(t, res.Stats.MatrixAvailable)
	assert.Equal(t, 4, res.Stats.FallbackLegs, "direct leg plus three trip legs")
}

func TestFindProfitablePairsCapacityBound(t *testing.T) {
	req := baseRequest()
	req.MaxTruckWeightKg = 100 // 50 units of 2 kg

	res, err := FindProfitablePairs(context.Background(), req, scenarioCandidates(50, 80), MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, 50.0, res.Pairs[0].TradedQuantity)
	assert.Equal(t, 1500.0, res.Pairs[0].GrossProfit)
}

func TestFindProfitablePairsTimeInfeasible(t *testing.T) {
	req := baseRequest()
	req.TMax = 0.01

	res, err := FindProfitablePairs(context.Background(), req, scenarioCandidates(50, 80), MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, 1, res.Stats.TimeInfeasible)
	assert.Equal(t, 0, res.Stats.QuantityInfeasible)
	assert.Equal(t, 0, res.Stats.Unprofitable)
}

func TestFindProfitablePairsZeroMargin(t *testing.T) {
	res, err := FindProfitablePairs(context.Background(), baseRequest(), scenarioCandidates(50, 50), MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, 1, res.Stats.Unprofitable)
	assert.Equal(t, 0, res.Stats.TimeInfeasible)
}

func TestFindProfitablePairsQuantityInfeasible(t *testing.T) {
	req := baseRequest()
	req.MaxTruckWeightKg = 1 // less than one 2 kg unit

	res, err := FindProfitablePairs(context.Background(), req, scenarioCandidates(50, 80), MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, 1, res.Stats.QuantityInfeasible)
}

func TestFindProfitablePairsTransportCostCanKillTrade(t *testing.T) {
	// Supplier 50 km east of the corridor adds a large detour.
	east := domain.Coordinates{Lat: 0, Lon: 50 / kmPerDegree}
	candidates := []domain.WarehouseStock{
		supplierAt(1, 1, east, 100, 2, 50),
		demanderAt(2, 1, pointB, -100, 51),
	}

	res, err := FindProfitablePairs(context.Background(), baseRequest(), candidates, MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, 1, res.Stats.Unprofitable)
}

func TestFindProfitablePairsSkipsMismatchedItemsAndZeroQuantity(t *testing.T) {
	candidates := []domain.WarehouseStock{
		supplierAt(1, 1, pointA, 100, 2, 50),
		demanderAt(2, 2, pointB, -100, 80),
		supplierAt(3, 2, pointA, 0, 2, 10),
	}

	res, err := FindProfitablePairs(context.Background(), baseRequest(), candidates, MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, 0, res.Stats.Evaluated)
}

func sixtyPairs() []domain.WarehouseStock {
	var candidates []domain.WarehouseStock
	for i := int64(1); i <= 60; i++ {
		candidates = append(candidates,
			supplierAt(1000+i, i, pointA, 10, 1, 10),
			demanderAt(2000+i, i, pointB, -10, 10+float64(i)),
		)
	}
	return candidates
}

func TestFindProfitablePairsKeepsTopThirty(t *testing.T) {
	res, err := FindProfitablePairs(context.Background(), baseRequest(), sixtyPairs(), MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 30)
	assert.Equal(t, 60, res.Stats.Accepted)

	for i, p := range res.Pairs {
		wantItem := int64(60 - i)
		assert.Equal(t, wantItem, p.ItemID)
		assert.InDelta(t, 10*float64(wantItem), p.NetProfit, 1e-6)
	}
}

func TestFindProfitablePairsWorkersMatchSequential(t *testing.T) {
	seq, err := FindProfitablePairs(context.Background(), baseRequest(), sixtyPairs(), MatchOptions{Fallback: fallback(), Workers: 1})
	require.NoError(t, err)

	par, err := FindProfitablePairs(context.Background(), baseRequest(), sixtyPairs(), MatchOptions{Fallback: fallback(), Workers: 7})
	require.NoError(t, err)

	assert.Equal(t, seq.Pairs, par.Pairs)
	assert.Equal(t, seq.Stats, par.Stats)
}

func TestFindProfitablePairsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindProfitablePairs(ctx, baseRequest(), sixtyPairs(), MatchOptions{Fallback: fallback(), Workers: 4})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFindProfitablePairsRequiresFallback(t *testing.T) {
	_, err := FindProfitablePairs(context.Background(), baseRequest(), sixtyPairs(), MatchOptions{})
	require.Error(t, err)
}

func TestFindProfitablePairsUsesMatrixLegs(t *testing.T) {
	start := domain.Coordinates{Lat: 0, Lon: 0}
	sup := domain.Coordinates{Lat: 0.1, Lon: 0}
	dem := domain.Coordinates{Lat: 0.2, Lon: 0}
	end := domain.Coordinates{Lat: 0.3, Lon: 0}

	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		{From: start, To: sup, Meters: 10000, Seconds: 600},
		{From: sup, To: dem, Meters: 100000, Seconds: 3600},
		{From: dem, To: end, Meters: 10000, Seconds: 600},
		{From: start, To: end, Meters: 100000, Seconds: 3600},
	})

	req := baseRequest()
	req.Start, req.End = start, end
	candidates := []domain.WarehouseStock{
		supplierAt(1, 1, sup, 100, 2, 50),
		demanderAt(2, 1, dem, -100, 80),
	}

	m, err := NewDistanceMatrix(context.Background(), provider, candidates, start, end)
	require.NoError(t, err)

	res, err := FindProfitablePairs(context.Background(), req, candidates, MatchOptions{Fallback: fallback(), Matrix: m})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)

	p := res.Pairs[0]
	assert.Equal(t, 10.0, p.AToBuy.DistanceKm)
	assert.Equal(t, 100.0, p.BuyToSell.DistanceKm)
	assert.Equal(t, 1.0, p.BuyToSell.TimeHours)
	assert.Equal(t, 100.0, p.TradedQuantity)
	assert.InDelta(t, 20.0, p.ExtraDistanceKm, 1e-9)
	// 20 km * 0.01 * (100 units * 2 kg)
	assert.InDelta(t, 40.0, p.TransportCost, 1e-9)
	assert.InDelta(t, 2960.0, p.NetProfit, 1e-9)
	assert.InDelta(t, 4.0/3.0, p.TotalTripTime, 1e-9)
	assert.True(t, res.Stats.MatrixAvailable)
	assert.Equal(t, 0, res.Stats.FallbackLegs)
}

func TestFindProfitablePairsFallsBackPerMissingCell(t *testing.T) {
	start := domain.Coordinates{Lat: 0, Lon: 0}
	sup := domain.Coordinates{Lat: 0.1, Lon: 0}
	dem := domain.Coordinates{Lat: 0.2, Lon: 0}
	end := domain.Coordinates{Lat: 0.3, Lon: 0}

	// sup -> dem is missing, e.g. the routing service could not snap the point.
	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		{From: start, To: sup, Meters: 10000, Seconds: 600},
		{From: dem, To: end, Meters: 10000, Seconds: 600},
		{From: start, To: end, Meters: 100000, Seconds: 3600},
	})

	req := baseRequest()
	req.Start, req.End = start, end
	candidates := []domain.WarehouseStock{
		supplierAt(1, 1, sup, 100, 2, 50),
		demanderAt(2, 1, dem, -100, 80),
	}

	m, err := NewDistanceMatrix(context.Background(), provider, candidates, start, end)
	require.NoError(t, err)

	res, err := FindProfitablePairs(context.Background(), req, candidates, MatchOptions{Fallback: fallback(), Matrix: m})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)

	want := fallback().Leg(sup, dem)
	assert.Equal(t, want, res.Pairs[0].BuyToSell)
	assert.Equal(t, 10.0, res.Pairs[0].AToBuy.DistanceKm)
	assert.Equal(t, 1, res.Stats.FallbackLegs)
}

func randomCandidates(r *rand.Rand, n int) []domain.WarehouseStock {
	out := make([]domain.WarehouseStock, 0, n)
	for i := 0; i < n; i++ {
		qty := float64(r.Intn(400) - 200)
		out = append(out, domain.WarehouseStock{
			WarehouseID: int64(r.Intn(n) + 1),
			ItemID:      int64(r.Intn(4) + 1),
			Location:    domain.Coordinates{Lat: r.Float64() * 1.5, Lon: r.Float64()*0.4 - 0.2},
			Quantity:    qty,
			UnitWeight:  0.5 + r.Float64()*5,
			UnitVolume:  0.1,
			BuyPrice:    60 + r.Float64()*60,
			SellPrice:   60 + r.Float64()*60,
		})
	}
	return out
}

func TestFindProfitablePairsResultProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for round := 0; round < 25; round++ {
		req := baseRequest()
		req.TMax = 2 + r.Float64()*10
		req.CostPerKmPerKg = r.Float64() * 0.05

		candidates := randomCandidates(r, 50)
		res, err := FindProfitablePairs(context.Background(), req, candidates, MatchOptions{Fallback: fallback(), Workers: 3})
		require.NoError(t, err)

		assert.LessOrEqual(t, len(res.Pairs), DefaultTopK)
		assert.LessOrEqual(t, len(res.Pairs), res.Stats.Accepted)
		assert.Equal(t, res.Stats.Evaluated,
			res.Stats.Accepted+res.Stats.TimeInfeasible+res.Stats.QuantityInfeasible+res.Stats.Unprofitable)

		for _, p := range res.Pairs {
			assert.Greater(t, p.NetProfit, 0.0)
			assert.LessOrEqual(t, p.TotalTripTime, req.TMax)
			assert.Greater(t, p.TradedQuantity, 0.0)
		}

		assert.True(t, slices.IsSortedFunc(res.Pairs, func(a, b domain.TripEvaluation) int {
			switch {
			case a.NetProfit > b.NetProfit:
				return -1
			case a.NetProfit < b.NetProfit:
				return 1
			}
			return 0
		}))
		assert.Equal(t, res.Pairs, RankPairs(res.Pairs, DefaultTopK), "ranking must be idempotent")
	}
}
