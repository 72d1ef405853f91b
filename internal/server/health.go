package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// APIPinger checks that the employee service answers.
type APIPinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	api APIPinger
	log *slog.Logger
}

func NewHealthChecker(log *slog.Logger, api APIPinger) *HealthChecker {
	return &HealthChecker{
		api: api,
		log: log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.api.Ping(req.Context()); err != nil {
		status["api"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: employee API ping", "error", err)
	} else {
		status["api"] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
