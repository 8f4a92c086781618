package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// pixelGIF is a fixed 43-byte 1x1 transparent GIF.
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21,
	0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00,
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
	0x01, 0x00, 0x3b,
}

// handlePixel serves the tracking pixel and fires the open event. The
// response is always 200 with the pixel bytes, whatever happens to the
// tracking side effect, so mail clients never render a broken image.
func (h *Handler) handlePixel(w http.ResponseWriter, r *http.Request) {
	if id := chi.URLParam(r, "deliveryId"); id != "" {
		h.tracking.RecordOpen(r.Context(), id, eventMeta(r))
	}
	servePixel(w)
}

// handleLink redirects to the target URL and fires the click event. The
// redirect never waits on the tracking write; a click with no target goes to
// the configured base URL and is not recorded.
func (h *Handler) handleLink(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		http.Redirect(w, r, h.baseURL, http.StatusFound)
		return
	}
	if id := chi.URLParam(r, "deliveryId"); id != "" {
		h.tracking.RecordClick(r.Context(), id, target, eventMeta(r))
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(pixelGIF)
}
