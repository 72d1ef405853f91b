package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMonitoringHandler routes /healthz to the API health check and /metrics to reg.
func NewMonitoringHandler(log *slog.Logger, reg *prometheus.Registry, api APIPinger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/healthz", NewHealthChecker(log, api))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux
}

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// StartMonitoringServer serves NewMonitoringHandler on port until ctx is
// cancelled or the listener fails.
func StartMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	api APIPinger,
	port int,
) {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      NewMonitoringHandler(log, reg, api),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()
	log.InfoContext(ctx, "Monitoring server started", "addr", srv.Addr)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Monitoring server failed", "error", err)
		}
	case <-ctx.Done():
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			log.ErrorContext(ctx, "Monitoring server failed to shutdown", "error", err)
			return
		}
		log.InfoContext(ctx, "Monitoring server stopped")
	}
}
