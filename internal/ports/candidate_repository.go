package ports

import (
	"context"
	"trade-route-service/internal/domain"
)

// Port: a boundary for retrieving trade candidates near the A -> B corridor.
type CandidateRepository interface {
	// Return warehouse stock rows pre-ranked by the source, at most q.Limit of them.
	LoadCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.WarehouseStock, error)
}
