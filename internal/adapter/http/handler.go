package httpadapter

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mailtrack/internal/core/port"
)

// Handler contains dependencies and routes. It is the inbound HTTP adapter:
// tracking endpoints, the scheduler trigger and the /api/v1 surface. Routes
// are registered on a chi.Router for convenient method handling.
type Handler struct {
	tracking port.TrackingUseCase
	sweep    port.SweepUseCase
	mailing  port.MailingUseCase
	secret   string
	baseURL  string
	logger   *slog.Logger
	router   chi.Router
}

// NewHandler creates a handler with all routes configured. secret guards the
// scheduler trigger; baseURL is where a click with no target is sent.
func NewHandler(tracking port.TrackingUseCase, sweep port.SweepUseCase, mailing port.MailingUseCase, secret, baseURL string, logger *slog.Logger) *Handler {
	h := &Handler{
		tracking: tracking,
		sweep:    sweep,
		mailing:  mailing,
		secret:   secret,
		baseURL:  baseURL,
		logger:   logger,
	}
	r := chi.NewRouter()

	r.Get("/health", h.handleHealth)
	r.Get("/tracking/pixel/{deliveryId}", h.handlePixel)
	r.Get("/tracking/link/{deliveryId}", h.handleLink)
	r.With(h.requireSchedulerSecret).Post("/scheduler/run", h.handleSchedulerRun)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/send", h.handleSend)
		r.Post("/schedule", h.handleSchedule)
		r.Post("/campaigns", h.handleCreateCampaign)
		r.Get("/deliveries/{deliveryId}", h.handleGetDelivery)
		r.Get("/stats/overview", h.handleStatsOverview)
	})

	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// eventMeta extracts the client address and user agent for a tracking event.
func eventMeta(r *http.Request) port.EventMeta {
	return port.EventMeta{IPAddress: realIP(r), UserAgent: r.UserAgent()}
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
