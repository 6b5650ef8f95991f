package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ayusman/handscene/internal/scene"
	"github.com/ayusman/handscene/internal/store"
)

// ViewportHandler reads and changes the render surface size. A successful
// change updates the scene camera and, when a store is set, is persisted.
type ViewportHandler struct {
	scene *scene.Scene
	store *store.Store
}

// NewViewportHandler creates a new ViewportHandler. s may be nil.
func NewViewportHandler(sc *scene.Scene, s *store.Store) *ViewportHandler {
	return &ViewportHandler{scene: sc, store: s}
}

type viewportResponse struct {
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Aspect float64 `json:"aspect"`
}

// ServeHTTP handles GET and PUT /api/viewport.
func (h *ViewportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ViewportHandler) get(w http.ResponseWriter, r *http.Request) {
	resp := viewportResponse{Aspect: h.scene.Camera().Params().Aspect}

	if h.store != nil {
		vp, err := h.store.Settings().LoadViewport()
		switch {
		case err == nil:
			resp.Width, resp.Height = vp.Width, vp.Height
		case !errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusInternalServerError, "Failed to load viewport")
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ViewportHandler) put(w http.ResponseWriter, r *http.Request) {
	var req store.Viewport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.scene.Resize(req.Width, req.Height); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.store != nil {
		if err := h.store.Settings().SaveViewport(req); err != nil {
			log.Printf("Failed to save viewport: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, viewportResponse{
		Width:  req.Width,
		Height: req.Height,
		Aspect: h.scene.Camera().Params().Aspect,
	})
}
