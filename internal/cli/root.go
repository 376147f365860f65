// Package cli implements the forge command set.
package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/config"
	"github.com/gupta362/project-forge/internal/knowledge"
	"github.com/gupta362/project-forge/internal/openai"
	"github.com/gupta362/project-forge/internal/persistence"
	"github.com/gupta362/project-forge/internal/service"
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// bootstrap loads config and wires the full pipeline behind a project manager.
func bootstrap() (*config.Config, *zap.Logger, *service.ProjectManager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	kb, err := knowledge.Load(log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load knowledge base: %w", err)
	}

	ws := persistence.NewWorkspace(cfg.WorkspaceDir)

	var chat service.ChatClient
	var embedder service.Embedder
	if cfg.HasOpenAI() {
		client := openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      cfg.EmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
		})
		chat = client
		embedder = client
	} else {
		log.Warn("FORGE_OPENAI_API_KEY not set, running without model access")
	}

	manager := service.NewProjectManager(ws, chat, embedder, kb, service.OrchestratorConfig{
		ChatModel:    cfg.ChatModel,
		SummaryModel: cfg.SummaryModel,
	}, log)

	return cfg, log, manager, nil
}
