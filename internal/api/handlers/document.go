package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gupta362/project-forge/internal/api"
	"github.com/gupta362/project-forge/internal/domain"
)

// multipart parsing keeps at most this much in memory before spilling to disk
const uploadMemoryLimit = 4 << 20

type DocumentHandler struct {
	manager ProjectManager
}

func NewDocumentHandler(manager ProjectManager) *DocumentHandler {
	return &DocumentHandler{manager: manager}
}

// Upload accepts a multipart form with a single "file" field, converts and
// indexes the document, and returns its summary entry.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}

	project, err := h.manager.Open(chi.URLParam(r, "project"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	entry, err := project.Upload(r.Context(), header.Filename, data)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, entry)
}

// List returns the summaries of every uploaded document.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	project, err := h.manager.Open(chi.URLParam(r, "project"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	files := project.Session.FileSummaries
	if files == nil {
		files = []domain.FileSummary{}
	}

	api.Success(w, http.StatusOK, files)
}

// Delete removes a document and its indexed chunks.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	project, err := h.manager.Open(chi.URLParam(r, "project"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	filename := chi.URLParam(r, "filename")
	if err := project.RemoveFile(r.Context(), filename); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"removed": filename})
}
