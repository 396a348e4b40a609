// Package httptransport is the thin HTTP layer: the Twilio webhook, a JSON
// chat endpoint for development, read-only views and the operator API. It
// delegates to domain services and keeps transport concerns isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lautaro2705-commits/asistente-personal/internal/platform/metrics"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/middleware"
)

const requestTimeout = 60 * time.Second

// NewRouter assembles the full route tree with the standard middleware
// chain. The webhook and chat endpoints share the pipeline; /admin/* sits
// behind the bearer-token guard.
func NewRouter(h *Handler, validator middleware.TokenValidator, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	if m != nil {
		r.Use(middleware.Latency(m))
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/whatsapp", h.HandleWhatsApp)
	r.Post("/chat", h.HandleChat)
	r.Get("/events", h.HandleEvents)

	r.Post("/admin/token", h.HandleAdminToken)
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(validator, logger))
		admin.Post("/admin/send-reminder", h.HandleAdminSend)
	})

	return r
}
