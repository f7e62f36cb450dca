package api

import (
	"net/http"

	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

// IdempotencyHeader carries the client key that deduplicates POST /refresh.
const IdempotencyHeader = "Idempotency-Key"

type refreshResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	RequestID string `json:"request_id,omitempty"`
}

// handleRefresh handles POST /refresh. Accepted requests are queued for the
// refresh worker and answered with 202; a repeated Idempotency-Key gets 200.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_refresh"
	key := r.Header.Get(IdempotencyHeader)

	if !s.limiter.Allow() {
		metrics.RecordRateLimited()
		s.writeServiceError(w, r, op, ErrRateLimited)
		return
	}

	req, duplicate, err := s.deps.RequestRefresh(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, refreshResponse{Status: "duplicate", Duplicate: true})
		return
	}
	s.logger.Info(r.Context(), "refresh requested", logger.String("request_id", req.ID))
	writeJSON(w, http.StatusAccepted, refreshResponse{Status: "accepted", RequestID: req.ID})
}
