package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
	"trade-route-service/internal/domain"
	"trade-route-service/internal/platform/obs"
	"trade-route-service/internal/ports"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned without waiting when the local request budget is exhausted.
var ErrRateLimited = errors.New("ors: local rate limit exceeded")

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
	Units     string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// ORSOptions configures the OpenRouteService matrix client.
type ORSOptions struct {
	BaseURL       string
	Profile       string
	Timeout       time.Duration
	RatePerMinute int
	// Optional; a client with Timeout is created when nil.
	HTTPClient *http.Client
}

// ORSMatrixProvider implements DistanceMatrixProvider using the OpenRouteService
// /v2/matrix endpoint. Each call is a single attempt guarded by a non-blocking
// rate limiter. The provider is safe for concurrent use.
type ORSMatrixProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	limiter *rate.Limiter
}

func NewORSMatrixProvider(apiKey string, opts ORSOptions) (*ORSMatrixProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openrouteservice.org"
	}
	if opts.Profile == "" {
		opts.Profile = "driving-car"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = 40
	}

	session := opts.HTTPClient
	if session == nil {
		session = &http.Client{Timeout: opts.Timeout}
	}

	return &ORSMatrixProvider{
		session: session,
		apiKey:  apiKey,
		baseURL: opts.BaseURL,
		profile: opts.Profile,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), 1),
	}, nil
}

// Matrix retrieves the full pairwise distance/duration matrix for locations.
// A null metric in the response becomes a nil cell.
func (o *ORSMatrixProvider) Matrix(
	ctx context.Context,
	locations []domain.Coordinates,
) (_ ports.Matrix, err error) {
	defer obs.Time(ctx, "ors.Matrix")(&err)
	defer func() { obs.RoutingCalls.WithLabelValues(classify(err)).Inc() }()

	if len(locations) == 0 {
		return ports.Matrix{}, nil
	}

	if !o.limiter.Allow() {
		return nil, ErrRateLimited
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	coords := make([][]float64, 0, len(locations))
	for _, c := range locations {
		coords = append(coords, c.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: coords,
		Metrics:   []string{"distance", "duration"},
		Units:     "m",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	req, err := o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("matrix request: %w", err)
	}

	resp, err := o.do(req)
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	return buildMatrix(mr, len(locations))
}

func buildMatrix(mr matrixResponse, n int) (ports.Matrix, error) {
	if len(mr.Distances) != n || len(mr.Durations) != n {
		return nil, fmt.Errorf(
			"expected %d rows; got distances=%d durations=%d",
			n, len(mr.Distances), len(mr.Durations),
		)
	}

	out := make(ports.Matrix, n)
	for i := 0; i < n; i++ {
		rowDistances := mr.Distances[i]
		rowDurations := mr.Durations[i]

		if len(rowDistances) != n || len(rowDurations) != n {
			return nil, fmt.Errorf(
				"row %d length mismatch: distances=%d durations=%d want=%d",
				i, len(rowDistances), len(rowDurations), n,
			)
		}

		out[i] = make([]*ports.DistanceResult, n)
		for j := 0; j < n; j++ {
			metersPtr := rowDistances[j]
			secondsPtr := rowDurations[j]
			if metersPtr == nil || secondsPtr == nil {
				continue
			}

			// ORS returns float metrics; round to nearest integer for domain consistency.
			out[i][j] = &ports.DistanceResult{
				DistanceMeters:  int(math.Round(*metersPtr)),
				DurationSeconds: int(math.Round(*secondsPtr)),
			}
		}
	}

	return out, nil
}
