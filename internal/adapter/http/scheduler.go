package httpadapter

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// requireSchedulerSecret guards the scheduler trigger with a shared secret
// header. An unset secret rejects everything rather than opening the
// endpoint.
func (h *Handler) requireSchedulerSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Scheduler-Secret")
		if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleSchedulerRun runs one sweep over all due scheduled emails and
// campaigns. Item-level failures come back in the payload, not as an HTTP
// error.
func (h *Handler) handleSchedulerRun(w http.ResponseWriter, r *http.Request) {
	res, err := h.sweep.RunSweep(r.Context())
	if err != nil {
		h.logger.Error("sweep error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	payload := map[string]any{
		"success":         true,
		"emails":          res.Emails,
		"campaigns":       res.Campaigns,
		"recipients_sent": res.RecipientsSent,
		"failures":        res.Failures,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	}
	if err = json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
