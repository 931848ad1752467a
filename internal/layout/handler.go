package layout

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"videowall/internal/catalog"
)

// Handler serves the saved layout read-only; the order is written by walls.
type Handler struct {
	store *Store
	log   *slog.Logger
}

// NewHandler returns a Handler over store.
func NewHandler(store *Store, log *slog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// GetLayout handles GET /api/layout. The optional wall query parameter picks
// a named wall.
func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	store, err := h.store.ForWall(r.URL.Query().Get("wall"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order, _, err := store.LoadOrder(r.Context())
	if err != nil {
		h.log.Error("load layout failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if order == nil {
		order = []catalog.StreamID{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"order": order})
}
