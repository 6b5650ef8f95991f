package api

import (
	"net/http"

	"github.com/ayusman/handscene/internal/scene"
)

// SceneHandler serves the current scene snapshot.
type SceneHandler struct {
	scene *scene.Scene
}

// NewSceneHandler creates a new SceneHandler for sc.
func NewSceneHandler(sc *scene.Scene) *SceneHandler {
	return &SceneHandler{scene: sc}
}

// ServeHTTP handles GET /api/scene.
func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.scene.Snapshot())
}
