package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/rally/internal/adapters/report"
)

// handlePlayers handles GET /players.
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.deps.Players(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "api.get_players", err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// handleProfile handles GET /players/{player}.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Profile(r.Context(), chi.URLParam(r, "player"))
	if err != nil {
		s.writeServiceError(w, r, "api.get_profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleChart handles GET /players/{player}/chart.png.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	player := chi.URLParam(r, "player")
	history, err := s.deps.History(r.Context(), player)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	players, err := s.deps.Players(r.Context())
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	png, err := report.RankHistoryChart(player, history, len(players), report.DefaultPalette)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
