// Package api serves the ranking read model and the refresh trigger over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okian/rally/internal/adapters/repository"
	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/domain/analytics"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/types"
	"github.com/okian/rally/pkg/logger"
	"golang.org/x/time/rate"
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	RequestRefresh(ctx context.Context, key string) (model.RefreshRequest, bool, error)

	Snapshot(ctx context.Context) (repository.Snapshot, error)
	Days(ctx context.Context) ([]string, error)
	Leaderboard(ctx context.Context, date time.Time, limit int) (types.Leaderboard, error)
	Rank(ctx context.Context, player string, date time.Time) (types.Entry, error)
	Highlights(ctx context.Context, date time.Time) (types.Highlights, error)
	Players(ctx context.Context) ([]string, error)
	Profile(ctx context.Context, player string) (types.Profile, error)
	History(ctx context.Context, player string) ([]analytics.HistoryPoint, error)
	GetStats(ctx context.Context) service.Stats
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps    Dependencies
	limiter *rate.Limiter
	now     func() time.Time
	logger  logger.Logger
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:    deps,
		limiter: rate.NewLimiter(perMinute(6), 6),
		now:     time.Now,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the chi router with every route wrapped by MetricsMiddleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.handleStats, "stats"))
	r.Get("/days", MetricsMiddleware(s.handleDays, "days"))
	r.Get("/leaderboard", MetricsMiddleware(s.handleLeaderboard, "leaderboard"))
	r.Get("/rank/{player}", MetricsMiddleware(s.handleRank, "rank"))
	r.Get("/highlights", MetricsMiddleware(s.handleHighlights, "highlights"))
	r.Get("/export.xlsx", MetricsMiddleware(s.handleExport, "export"))
	r.Post("/refresh", MetricsMiddleware(s.handleRefresh, "refresh"))

	r.Route("/players", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.handlePlayers, "players"))
		r.Get("/{player}", MetricsMiddleware(s.handleProfile, "profile"))
		r.Get("/{player}/chart.png", MetricsMiddleware(s.handleChart, "chart"))
	})

	r.NotFound(MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	}, "not_found"))
	r.MethodNotAllowed(MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}, "method_not_allowed"))
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service sentinels to status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidDate), errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrUnknownDate), errors.Is(err, service.ErrUnknownPlayer):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotReady), errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", err)
	default:
		s.logger.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
	}
}
