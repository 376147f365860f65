package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gupta362/project-forge/internal/api"
)

type ChatHandler struct {
	manager ProjectManager
}

func NewChatHandler(manager ProjectManager) *ChatHandler {
	return &ChatHandler{manager: manager}
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
	Turn  int    `json:"turn"`
	Phase string `json:"phase"`
	Mode  string `json:"mode,omitempty"`
}

// Turn runs one conversation turn against the project.
func (h *ChatHandler) Turn(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	project, err := h.manager.Open(chi.URLParam(r, "project"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	reply, err := project.ProcessTurn(r.Context(), req.Message)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Reply: reply,
		Turn:  project.Session.TurnCount,
		Phase: string(project.Session.CurrentPhase),
		Mode:  string(project.Session.ActiveMode),
	})
}
