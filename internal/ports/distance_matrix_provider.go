package ports

import (
	"context"
	"trade-route-service/internal/domain"
)

// Matrix is a square origin x destination table. A nil cell means the routing
// service returned no value for that pair.
type Matrix [][]*DistanceResult

// Size reports the number of rows and whether every row has the same length.
func (m Matrix) Size() (int, bool) {
	n := len(m)
	for _, row := range m {
		if len(row) != n {
			return n, false
		}
	}
	return n, true
}

// Batched routing lookup over an ordered list of locations.
type DistanceMatrixProvider interface {
	// Return the full pairwise matrix; row i / column j follow the order of locations.
	Matrix(ctx context.Context, locations []domain.Coordinates) (Matrix, error)
}
