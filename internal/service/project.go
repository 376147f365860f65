package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/domain"
	"github.com/gupta362/project-forge/internal/knowledge"
	"github.com/gupta362/project-forge/internal/persistence"
	"github.com/gupta362/project-forge/internal/repository"
	"github.com/gupta362/project-forge/internal/telemetry"
)

// Project is one open conversation with its wired pipeline. State is
// persisted after every mutating operation, so a crash loses at most the
// turn in flight.
type Project struct {
	Name    string
	Session *domain.Session

	orch        *Orchestrator
	uploader    *Uploader
	ws          *persistence.Workspace
	sessionPath string
	log         *zap.Logger
}

// ProjectManager opens projects on demand and caches them. Each project
// gets its own vector database; the underlying store handles are shared
// process-wide per path.
type ProjectManager struct {
	ws       *persistence.Workspace
	chat     ChatClient
	embedder Embedder
	kb       *knowledge.Base
	cfg      OrchestratorConfig
	log      *zap.Logger

	mu   sync.Mutex
	open map[string]*Project
}

func NewProjectManager(ws *persistence.Workspace, chat ChatClient, embedder Embedder, kb *knowledge.Base, cfg OrchestratorConfig, log *zap.Logger) *ProjectManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectManager{
		ws:       ws,
		chat:     chat,
		embedder: embedder,
		kb:       kb,
		cfg:      cfg,
		log:      log,
		open:     make(map[string]*Project),
	}
}

// Open returns the project, loading existing state or creating a new one.
func (m *ProjectManager) Open(name string) (*Project, error) {
	slug := persistence.Slugify(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.open[slug]; ok {
		return p, nil
	}

	if _, err := m.ws.EnsureProject(name); err != nil {
		return nil, err
	}

	sessionPath := m.ws.SessionPath(name)
	fresh := false
	sess, err := persistence.LoadSession(sessionPath, m.log)
	if errors.Is(err, domain.ErrProjectNotFound) {
		sess = domain.NewSession(slug)
		fresh = true
	} else if err != nil {
		return nil, err
	}

	// The context file is user-editable between sessions; disk wins.
	if contextMD, err := m.ws.ReadContext(name); err != nil {
		m.log.Warn("context file unreadable", zap.String("project", slug), zap.Error(err))
	} else if contextMD != "" {
		sess.Org.SetInternal(contextMD)
	}

	store, err := repository.SharedVectorStore(m.ws.VectorDBPath(name), m.log)
	if err != nil {
		return nil, fmt.Errorf("open project %s: %w", slug, err)
	}

	engine := NewEngine(store, m.embedder, m.log)
	renderer := NewArtifactRenderer(m.ws.ArtifactsDir(name), m.log)
	executor := NewExecutor(renderer, m.log)

	p := &Project{
		Name:        slug,
		Session:     sess,
		orch:        NewOrchestrator(m.chat, engine, executor, m.kb, m.cfg, m.log),
		uploader:    NewUploader(m.ws.UploadsDir(name), engine, m.chat, m.cfg.SummaryModel, m.log),
		ws:          m.ws,
		sessionPath: sessionPath,
		log:         m.log,
	}
	// A brand-new project becomes visible to List once its snapshot exists.
	if fresh {
		p.persist()
	}

	m.open[slug] = p
	return p, nil
}

// List returns the slugs of all persisted projects.
func (m *ProjectManager) List() ([]string, error) {
	return m.ws.ListProjects()
}

// ProcessTurn runs one turn and persists the session.
func (p *Project) ProcessTurn(ctx context.Context, userInput string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "Project.ProcessTurn", telemetry.SpanAttributes{
		Project:   p.Name,
		Turn:      p.Session.TurnCount + 1,
		Operation: "turn",
	})
	defer span.End()

	reply, err := p.orch.ProcessTurn(ctx, p.Session, userInput)
	if err != nil {
		span.SetError(err)
		return "", err
	}
	p.persist()
	return reply, nil
}

// Upload ingests a document and persists the session.
func (p *Project) Upload(ctx context.Context, filename string, data []byte) (domain.FileSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "Project.Upload", telemetry.SpanAttributes{
		Project:   p.Name,
		Operation: "upload",
	})
	defer span.End()

	entry, err := p.uploader.Upload(ctx, p.Session, filename, data)
	if err != nil {
		span.SetError(err)
		return domain.FileSummary{}, err
	}
	p.persist()
	return entry, nil
}

// RemoveFile drops a document from the project and persists the session.
func (p *Project) RemoveFile(ctx context.Context, filename string) error {
	if err := p.uploader.Remove(ctx, p.Session, filename); err != nil {
		return err
	}
	p.persist()
	return nil
}

// LatestArtifact returns the most recently rendered artifact, if any.
func (p *Project) LatestArtifact() string {
	return p.Session.LatestArtifact
}

// persist saves the session and regenerates the context file. Failures
// are logged, not returned: losing a snapshot must not fail the turn
// whose reply the user already has.
func (p *Project) persist() {
	if err := persistence.SaveSession(p.sessionPath, p.Session); err != nil {
		p.log.Error("session save failed", zap.String("project", p.Name), zap.Error(err))
	}
	if rendered := p.Session.Org.Render(); rendered != "" {
		if err := p.ws.WriteContext(p.Name, rendered); err != nil {
			p.log.Warn("context file write failed", zap.String("project", p.Name), zap.Error(err))
		}
	}
}
