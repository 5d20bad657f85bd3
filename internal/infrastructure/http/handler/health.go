package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rezkam/taskboard/internal/infrastructure/http/response"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "Task Manager API"

// Pinger checks a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResource is the data of a health response.
type HealthResource struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

// HealthHandler reports service health, including storage reachability.
type HealthHandler struct {
	resp        *response.Responder
	store       Pinger
	version     string
	environment string
	now         func() time.Time
}

// NewHealthHandler creates a health handler. store may be nil.
func NewHealthHandler(resp *response.Responder, store Pinger, version, environment string) *HealthHandler {
	return &HealthHandler{
		resp:        resp,
		store:       store,
		version:     version,
		environment: environment,
		now:         time.Now,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			slog.ErrorContext(r.Context(), "health check failed", "error", err)
			h.resp.Error(w, http.StatusServiceUnavailable, "Storage is unavailable")
			return
		}
	}

	h.resp.OK(w, "API is healthy", HealthResource{
		Service:     ServiceName,
		Version:     h.version,
		Timestamp:   h.now().UTC().Format(response.TimestampLayout),
		Environment: h.environment,
	})
}
