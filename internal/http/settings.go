package httpapp

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookwish/internal/domain"
)

// Admin settings: notification subscriptions and the auto-download flag.

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ns, err := h.DB.ListNotifications(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ns); err != nil {
		h.Logger.Error("Failed to encode notifications", "error", err)
	}
}

func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	event := domain.EventKind(r.PostFormValue("event"))
	if event != domain.EventOnNewRequest && event != domain.EventOnFailedRequest {
		http.Error(w, "unknown event kind", http.StatusBadRequest)
		return
	}
	name := r.PostFormValue("name")
	endpoint := r.PostFormValue("url")
	if name == "" || endpoint == "" {
		http.Error(w, "name and url are required", http.StatusBadRequest)
		return
	}

	var headers domain.StringMap
	if raw := r.PostFormValue("headers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &headers); err != nil {
			http.Error(w, "headers must be a JSON object", http.StatusBadRequest)
			return
		}
	}

	n := &domain.Notification{
		ID:            uuid.New().String(),
		Name:          name,
		Event:         event,
		URL:           endpoint,
		TitleTemplate: r.PostFormValue("title_template"),
		BodyTemplate:  r.PostFormValue("body_template"),
		Headers:       headers,
		CreatedAt:     time.Now(),
	}
	if err := h.DB.CreateNotification(r.Context(), n); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(n); err != nil {
		h.Logger.Error("Failed to encode notification", "error", err)
	}
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.DB.DeleteNotification(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAutoDownload persists the site-wide flag and refreshes the policy
// cache so the next request sees the new value.
func (h *Handler) SetAutoDownload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	enabled, err := strconv.ParseBool(r.PostFormValue("enabled"))
	if err != nil {
		http.Error(w, "enabled must be a boolean", http.StatusBadRequest)
		return
	}

	if err := h.Quality.SetAutoDownload(r.Context(), h.DB, enabled); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
