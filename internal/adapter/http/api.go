package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mailtrack/internal/core/port"
)

// handleSend dispatches a tracked email immediately. Parsing and validation
// errors produce HTTP 400, transport or store failures HTTP 500.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req port.SendReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	rec, err := h.mailing.SendTracked(r.Context(), req)
	if errors.Is(err, port.ErrInvalidRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("send error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, rec)
}

// handleSchedule registers an individual email for a later sweep.
func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req port.ScheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	e, err := h.mailing.Schedule(r.Context(), req)
	if errors.Is(err, port.ErrInvalidRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("schedule error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, e)
}

// handleCreateCampaign registers a bulk send with its recipient set.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req port.CampaignReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := h.mailing.CreateCampaign(r.Context(), req)
	if errors.Is(err, port.ErrInvalidRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("create campaign error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

// handleGetDelivery returns one delivery record with its open/click state.
func (h *Handler) handleGetDelivery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "deliveryId")
	rec, err := h.mailing.GetDelivery(r.Context(), id)
	if errors.Is(err, port.ErrDeliveryNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("get delivery error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// handleStatsOverview returns the global and per-day tracking counters.
func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.mailing.Stats(r.Context())
	if err != nil {
		h.logger.Error("stats error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
