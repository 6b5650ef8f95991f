package api

import (
	"encoding/json"
	"net/http"
)

// Toggle switches hand tracking on and off.
type Toggle interface {
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// TrackingHandler exposes the tracking toggle.
type TrackingHandler struct {
	toggle Toggle
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(t Toggle) *TrackingHandler {
	return &TrackingHandler{toggle: t}
}

type trackingState struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and PUT /api/tracking.
func (h *TrackingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req trackingState
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.toggle.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	enabled := h.toggle.IsEnabled()
	writeJSON(w, http.StatusOK, trackingState{Enabled: &enabled})
}
