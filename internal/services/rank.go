package services

import (
	"cmp"
	"slices"
	"trade-route-service/internal/domain"
)

// DefaultTopK is the number of trips returned to the caller.
const DefaultTopK = 30

// RankPairs orders trips by net profit, highest first, and keeps the first k.
// The sort is stable so equal profits keep their evaluation order.
func RankPairs(pairs []domain.TripEvaluation, k int) []domain.TripEvaluation {
	if k <= 0 {
		k = DefaultTopK
	}

	ranked := slices.Clone(pairs)
	if ranked == nil {
		ranked = []domain.TripEvaluation{}
	}

	slices.SortStableFunc(ranked, func(a, b domain.TripEvaluation) int {
		return cmp.Compare(b.NetProfit, a.NetProfit)
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
