package services

import (
	"context"
	"errors"
	"fmt"
	"trade-route-service/internal/domain"
	"trade-route-service/internal/platform/obs"
	"trade-route-service/internal/ports"
)

// ErrMatrixUnavailable marks a failed batched routing query. The matrix is
// either complete or not built at all; there is no partial state.
var ErrMatrixUnavailable = errors.New("distance matrix unavailable")

// DistanceMatrix answers point-to-point lookups between request warehouses and
// the fixed start/end points from a single batched routing query.
//
// Layout: index 0 is the start, 1..n are the deduplicated warehouses in
// first-seen order, n+1 is the end. A nil *DistanceMatrix is valid and reports
// every lookup as missing.
type DistanceMatrix struct {
	index map[int64]int
	cells ports.Matrix
	end   int
}

// NewDistanceMatrix deduplicates warehouses by id (first occurrence wins) and
// issues one (n+2)x(n+2) query to provider.
func NewDistanceMatrix(
	ctx context.Context,
	provider ports.DistanceMatrixProvider,
	warehouses []domain.WarehouseStock,
	start, end domain.Coordinates,
) (_ *DistanceMatrix, err error) {
	defer obs.Time(ctx, "matrix.Build")(&err)

	if provider == nil {
		return nil, fmt.Errorf("%w: no routing provider configured", ErrMatrixUnavailable)
	}

	index := make(map[int64]int, len(warehouses))
	locations := make([]domain.Coordinates, 0, len(warehouses)+2)
	locations = append(locations, start)
	for _, w := range warehouses {
		if _, ok := index[w.WarehouseID]; ok {
			continue
		}
		index[w.WarehouseID] = len(locations)
		locations = append(locations, w.Location)
	}
	locations = append(locations, end)

	cells, err := provider.Matrix(ctx, locations)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMatrixUnavailable, err)
	}

	n, square := cells.Size()
	if !square || n != len(locations) {
		return nil, fmt.Errorf("%w: expected %dx%d matrix, got %d rows", ErrMatrixUnavailable, len(locations), len(locations), n)
	}

	return &DistanceMatrix{
		index: index,
		cells: cells,
		end:   len(locations) - 1,
	}, nil
}

// Len reports the number of distinct warehouses in the matrix.
func (m *DistanceMatrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.index)
}

func (m *DistanceMatrix) cell(i, j int) (domain.Leg, bool) {
	c := m.cells[i][j]
	if c == nil {
		return domain.Leg{}, false
	}
	return c.Leg(), true
}

// Pair returns the leg from warehouse a to warehouse b.
func (m *DistanceMatrix) Pair(a, b int64) (domain.Leg, bool) {
	if m == nil {
		return domain.Leg{}, false
	}
	i, ok := m.index[a]
	if !ok {
		return domain.Leg{}, false
	}
	j, ok := m.index[b]
	if !ok {
		return domain.Leg{}, false
	}
	return m.cell(i, j)
}

// FromStart returns the leg from the start point to warehouse id.
func (m *DistanceMatrix) FromStart(id int64) (domain.Leg, bool) {
	if m == nil {
		return domain.Leg{}, false
	}
	j, ok := m.index[id]
	if !ok {
		return domain.Leg{}, false
	}
	return m.cell(0, j)
}

// ToEnd returns the leg from warehouse id to the end point.
func (m *DistanceMatrix) ToEnd(id int64) (domain.Leg, bool) {
	if m == nil {
		return domain.Leg{}, false
	}
	i, ok := m.index[id]
	if !ok {
		return domain.Leg{}, false
	}
	return m.cell(i, m.end)
}

// StartToEnd returns the direct start -> end leg.
func (m *DistanceMatrix) StartToEnd() (domain.Leg, bool) {
	if m == nil {
		return domain.Leg{}, false
	}
	return m.cell(0, m.end)
}
