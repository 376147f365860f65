package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gupta362/project-forge/internal/api"
)

type ArtifactHandler struct {
	manager ProjectManager
}

func NewArtifactHandler(manager ProjectManager) *ArtifactHandler {
	return &ArtifactHandler{manager: manager}
}

// Latest returns the most recently rendered artifact as markdown.
func (h *ArtifactHandler) Latest(w http.ResponseWriter, r *http.Request) {
	project, err := h.manager.Open(chi.URLParam(r, "project"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	artifact := project.LatestArtifact()
	if artifact == "" {
		api.Error(w, http.StatusNotFound, "no artifact rendered yet")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(artifact))
}
