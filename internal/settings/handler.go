package settings

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Notifier is told about every effective settings change so live walls can
// follow it.
type Notifier interface {
	SettingsChanged(s Settings)
}

// Handler exposes the settings endpoints.
type Handler struct {
	repo   *Repository
	notify Notifier
	log    *slog.Logger
}

// NewHandler returns a Handler. notify may be nil.
func NewHandler(repo *Repository, notify Notifier, log *slog.Logger) *Handler {
	return &Handler{repo: repo, notify: notify, log: log}
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.Get())
}

// UpdateSettings handles PUT /api/settings.
// Body: { "enableSubtitles": true, "backgroundColor": "#101010" }; both optional.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var p Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.log.Debug("invalid settings body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s, changed, err := h.repo.Update(r.Context(), p)
	if err != nil {
		if errors.Is(err, ErrInvalidSettings) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.log.Error("update settings failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if changed {
		h.log.Info("settings updated",
			slog.Bool("enable_subtitles", s.EnableSubtitles),
			slog.String("background_color", s.BackgroundColor))
		if h.notify != nil {
			h.notify.SettingsChanged(s)
		}
	}
	writeJSON(w, http.StatusOK, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
