package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gupta362/project-forge/internal/api"
	"github.com/gupta362/project-forge/internal/domain"
	"github.com/gupta362/project-forge/internal/service"
)

// ProjectManager opens and enumerates projects. Opening a project that does
// not exist yet creates it.
type ProjectManager interface {
	Open(name string) (*service.Project, error)
	List() ([]string, error)
}

type ProjectHandler struct {
	manager ProjectManager
}

func NewProjectHandler(manager ProjectManager) *ProjectHandler {
	return &ProjectHandler{manager: manager}
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

// ProjectView is the API shape of a project's session state.
type ProjectView struct {
	Name        string               `json:"name"`
	TurnCount   int                  `json:"turn_count"`
	Phase       string               `json:"phase"`
	Mode        string               `json:"mode,omitempty"`
	Files       []domain.FileSummary `json:"files"`
	Assumptions int                  `json:"assumptions"`
}

func projectView(p *service.Project) ProjectView {
	sess := p.Session
	files := sess.FileSummaries
	if files == nil {
		files = []domain.FileSummary{}
	}
	return ProjectView{
		Name:        p.Name,
		TurnCount:   sess.TurnCount,
		Phase:       string(sess.CurrentPhase),
		Mode:        string(sess.ActiveMode),
		Files:       files,
		Assumptions: len(sess.Register.Items),
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	project, err := h.manager.Open(req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, projectView(project))
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "project")
	project, err := h.manager.Open(name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, projectView(project))
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.manager.List()
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	if names == nil {
		names = []string{}
	}

	api.Success(w, http.StatusOK, names)
}
