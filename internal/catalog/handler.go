package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes catalog management endpoints using go-chi.
type Handler struct {
	repo *Repository
	log  *slog.Logger
}

// NewHandler returns a Handler over repo.
func NewHandler(repo *Repository, log *slog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// Routes mounts the catalog endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.ListStreams)
	r.Post("/", h.AddStream)
	r.Route("/{stream_id}", func(r chi.Router) {
		r.Put("/", h.UpdateStream)
		r.Delete("/", h.DeleteStream)
		r.Put("/autoload", h.SetAutoLoad)
	})
}

// ListStreams handles GET /api/streams.
func (h *Handler) ListStreams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.List())
}

// AddStream handles POST /api/streams.
// Body: { "name": "...", "type": "hls", "url": "https://...", "isDefault": false }.
func (h *Handler) AddStream(w http.ResponseWriter, r *http.Request) {
	var in StreamInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.log.Debug("invalid stream body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s, err := h.repo.Add(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.log.Info("stream added", slog.String("stream_id", string(s.ID)), slog.String("type", string(s.Kind)))
	writeJSON(w, http.StatusCreated, s)
}

// UpdateStream handles PUT /api/streams/{stream_id}.
func (h *Handler) UpdateStream(w http.ResponseWriter, r *http.Request) {
	id := StreamID(chi.URLParam(r, "stream_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var in StreamInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.log.Debug("invalid stream body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.log.Info("stream updated", slog.String("stream_id", string(id)))
	writeJSON(w, http.StatusOK, s)
}

// DeleteStream handles DELETE /api/streams/{stream_id}.
func (h *Handler) DeleteStream(w http.ResponseWriter, r *http.Request) {
	id := StreamID(chi.URLParam(r, "stream_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	h.log.Info("stream deleted", slog.String("stream_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

// SetAutoLoad handles PUT /api/streams/{stream_id}/autoload.
// Body: { "isDefault": true }.
func (h *Handler) SetAutoLoad(w http.ResponseWriter, r *http.Request) {
	id := StreamID(chi.URLParam(r, "stream_id"))

	var body struct {
		AutoLoad *bool `json:"isDefault"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.AutoLoad == nil || id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.repo.SetAutoLoad(r.Context(), id, *body.AutoLoad); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidStream):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrStreamNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		h.log.Error("catalog operation failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
