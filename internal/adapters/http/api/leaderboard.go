package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// handleDays handles GET /days: computed dates, most recent first.
func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.deps.Days(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "api.get_days", err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// handleLeaderboard handles GET /leaderboard?date=D&limit=N. Both
// parameters are optional: the latest day and the configured maximum.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	date, err := s.dateParam(r)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			s.writeServiceError(w, r, op, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
	}
	lb, err := s.deps.Leaderboard(r.Context(), date, limit)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// handleHighlights handles GET /highlights?date=D.
func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_highlights"
	date, err := s.dateParam(r)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	h, err := s.deps.Highlights(r.Context(), date)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}
