package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"trade-route-service/internal/api/dto"
	"trade-route-service/internal/domain"
	"trade-route-service/internal/platform/obs"
	"trade-route-service/internal/services"
)

// maxBodyBytes bounds the request body; a valid request is well under 1 KiB.
const maxBodyBytes = 64 << 10

// TripOptimizer is satisfied by *services.Optimizer.
type TripOptimizer interface {
	Optimize(ctx context.Context, req domain.TripRequest) (services.MatchResult, error)
}

type OptimizeHandler struct {
	Optimizer TripOptimizer
}

// Optimize validates the trip request, runs the matching engine and returns
// the ranked profitable trips.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Optimizer.Optimize(r.Context(), req.TripRequest())
	if err != nil {
		status, msg := optimizeErrorStatus(err)
		obs.Log(r.Context()).WithError(err).Error("optimize failed")
		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewOptimizeResponse(res))
}

func optimizeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrCandidatesUnavailable), errors.Is(err, services.ErrNoCandidateSource):
		return http.StatusBadGateway, "candidate source unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
