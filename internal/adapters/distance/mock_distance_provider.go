package distance

import (
	"context"
	"sync"
	"trade-route-service/internal/domain"
	"trade-route-service/internal/ports"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   int
	Seconds  int
}

// MockMatrixProvider answers matrix queries from a fixed pair table.
// Pairs not in the table come back as nil cells; the diagonal is zero.
type MockMatrixProvider struct {
	m   map[ports.PairKey]ports.DistanceResult
	Err error

	mu    sync.Mutex
	calls int
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	m := make(map[ports.PairKey]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[ports.PairKey{Origin: p.From.Key(), Destination: p.To.Key()}] = ports.DistanceResult{
			DistanceMeters:  p.Meters,
			DurationSeconds: p.Seconds,
		}
	}
	return &MockMatrixProvider{m: m}
}

func (p *MockMatrixProvider) Matrix(ctx context.Context, locations []domain.Coordinates) (ports.Matrix, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(ports.Matrix, len(locations))
	for i, from := range locations {
		out[i] = make([]*ports.DistanceResult, len(locations))
		for j, to := range locations {
			if from.Key() == to.Key() {
				out[i][j] = &ports.DistanceResult{}
				continue
			}
			if r, ok := p.m[ports.PairKey{Origin: from.Key(), Destination: to.Key()}]; ok {
				r := r
				out[i][j] = &r
			}
		}
	}
	return out, nil
}

// Calls reports how many times Matrix was invoked.
func (p *MockMatrixProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// MemoryDistanceCache is an in-process DistanceCache for tests and local runs.
type MemoryDistanceCache struct {
	mu sync.RWMutex
	m  map[ports.PairKey]ports.DistanceResult
}

func NewMemoryDistanceCache() *MemoryDistanceCache {
	return &MemoryDistanceCache{m: make(map[ports.PairKey]ports.DistanceResult)}
}

func (c *MemoryDistanceCache) GetMany(_ context.Context, pairs []ports.PairKey) (map[ports.PairKey]ports.DistanceResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[ports.PairKey]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		if r, ok := c.m[p]; ok {
			out[p] = r
		}
	}
	return out, nil
}

func (c *MemoryDistanceCache) PutMany(_ context.Context, results map[ports.PairKey]ports.DistanceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range results {
		c.m[k] = v
	}
	return nil
}
