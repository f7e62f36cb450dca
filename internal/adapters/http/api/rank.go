package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleRank handles GET /rank/{player}?date=D.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	date, err := s.dateParam(r)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	entry, err := s.deps.Rank(r.Context(), chi.URLParam(r, "player"), date)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
