package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/api"
	"github.com/gupta362/project-forge/internal/api/handlers"
	"github.com/gupta362/project-forge/internal/api/middleware"
)

type RouterConfig struct {
	ProjectHandler  *handlers.ProjectHandler
	ChatHandler     *handlers.ChatHandler
	DocumentHandler *handlers.DocumentHandler
	ArtifactHandler *handlers.ArtifactHandler
	Logger          *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 25 * 1024 * 1024

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Sentry)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", cfg.ProjectHandler.Create)
		r.Get("/", cfg.ProjectHandler.List)

		r.Route("/{project}", func(r chi.Router) {
			r.Get("/", cfg.ProjectHandler.Get)
			r.Post("/chat", cfg.ChatHandler.Turn)
			r.Get("/artifact", cfg.ArtifactHandler.Latest)

			r.Route("/documents", func(r chi.Router) {
				r.Post("/", cfg.DocumentHandler.Upload)
				r.Get("/", cfg.DocumentHandler.List)
				r.Delete("/{filename}", cfg.DocumentHandler.Delete)
			})
		})
	})

	return r
}
