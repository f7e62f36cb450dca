package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/rally/internal/adapters/http/api"
	"github.com/okian/rally/internal/adapters/matchlog"
	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/config"
	"github.com/okian/rally/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	srv, svc, err := newServer(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build server", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// newServer wires the match log source, the ranking service and the HTTP
// API from cfg.
func newServer(cfg *config.Config, log logger.Logger) (*http.Server, *service.Service, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, nil, err
	}
	src, err := matchlog.NewSource(cfg.Source,
		matchlog.WithDateLayout(cfg.DateLayout),
		matchlog.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout()}),
		matchlog.WithLogger(log.Named("matchlog")),
	)
	if err != nil {
		return nil, nil, err
	}

	svc := service.New(src,
		service.WithLogger(log.Named("service")),
		service.WithTiePolicy(policy),
		service.WithQueueSize(cfg.RefreshQueueSize),
		service.WithRefreshInterval(cfg.RefreshInterval()),
		service.WithFetchTimeout(cfg.FetchTimeout()),
		service.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	)

	apiServer := api.NewServer(svc,
		api.WithRefreshRate(cfg.RefreshRatePerMin),
		api.WithLogger(log.Named("api")),
	)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Routes(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}, svc, nil
}
