package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/domain"
	"github.com/gupta362/project-forge/internal/repository"
)

const (
	// defaultDocResults is how many document sections a retrieval returns.
	defaultDocResults = 5
	// defaultConvResults is how many past turns a retrieval returns.
	defaultConvResults = 3
	// recencyWindow is how many of the most recent turns are excluded
	// from conversation retrieval. They are already in the prompt.
	recencyWindow = 3
)

// Embedder is the slice of the provider client the retrieval engine needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// RetrievedDocument is one document section returned from search. Content
// is the parent section text, so the model sees full sections rather than
// leaf fragments.
type RetrievedDocument struct {
	Source     string
	HeaderPath string
	Content    string
	Score      float64
}

// RetrievedTurn is one past conversation turn returned from search.
type RetrievedTurn struct {
	TurnNumber int
	Content    string
	Score      float64
}

// ContextBundle is everything the retrieval engine assembles for a turn.
type ContextBundle struct {
	OrgContext    string
	FileSummaries []domain.FileSummary
	Documents     []RetrievedDocument
	Conversations []RetrievedTurn
}

// Engine ingests documents and conversation turns into the project's
// vector store and assembles retrieval context for prompts. With no
// embedder configured the engine is disabled: ingest becomes an error,
// retrieval degrades to the deterministic context slice.
type Engine struct {
	store    *repository.VectorStore
	embedder Embedder
	chunkCfg ChunkConfig
	log      *zap.Logger
}

func NewEngine(store *repository.VectorStore, embedder Embedder, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		chunkCfg: DefaultChunkConfig(),
		log:      log,
	}
}

// Enabled reports whether semantic retrieval is available.
func (e *Engine) Enabled() bool {
	return e != nil && e.store != nil && e.embedder != nil
}

// IngestFile chunks, embeds and stores a document, replacing any previous
// ingest of the same filename. Returns the number of chunks stored.
func (e *Engine) IngestFile(ctx context.Context, filename string, data []byte) (int, error) {
	if !e.Enabled() {
		return 0, domain.ErrRetrievalDisabled
	}

	chunks, err := ProcessFile(filename, data, e.chunkCfg)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.ContextHeader + "\n\n" + c.Text
	}
	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks for %s: %w", filename, err)
	}

	if _, err := e.store.Documents().DeleteBySource(ctx, filename); err != nil {
		return 0, err
	}

	records := make([]repository.DocumentRecord, len(chunks))
	for i, c := range chunks {
		records[i] = repository.DocumentRecord{
			ID:         fmt.Sprintf("%s_chunk_%d", filename, i),
			Source:     filename,
			HeaderPath: strings.Join(c.HeaderPath, " > "),
			Level:      c.Level,
			ParentID:   c.ParentID,
			ParentText: c.ParentText,
			Content:    c.Text,
			Embedding:  vectors[i],
		}
	}
	if err := e.store.Documents().UpsertBatch(ctx, records); err != nil {
		return 0, err
	}

	e.log.Info("ingested document",
		zap.String("filename", filename),
		zap.Int("chunks", len(records)))
	return len(records), nil
}

// RemoveFile deletes all chunks ingested from the named file.
func (e *Engine) RemoveFile(ctx context.Context, filename string) (int64, error) {
	if !e.Enabled() {
		return 0, domain.ErrRetrievalDisabled
	}
	return e.store.Documents().DeleteBySource(ctx, filename)
}

// IndexTurn stores a turn's summary as a single searchable document. The
// id is derived from the turn number, so re-indexing after a crash
// overwrites rather than duplicates.
func (e *Engine) IndexTurn(ctx context.Context, turnNumber int, content string, mode domain.Mode, probe string) error {
	if !e.Enabled() {
		return domain.ErrRetrievalDisabled
	}

	vector, err := e.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed turn %d: %w", turnNumber, err)
	}
	return e.store.Conversations().Upsert(ctx, repository.TurnRecord{
		ID:         fmt.Sprintf("turn_%d", turnNumber),
		TurnNumber: turnNumber,
		Mode:       string(mode),
		Probe:      probe,
		Content:    content,
		Embedding:  vector,
	})
}

// RetrieveDocuments returns the k most relevant document sections for the
// query. Leaf hits are over-fetched and deduplicated by parent, so two
// leaves of one section never crowd out a second section.
func (e *Engine) RetrieveDocuments(ctx context.Context, query string, k int) ([]RetrievedDocument, error) {
	if !e.Enabled() {
		return nil, domain.ErrRetrievalDisabled
	}
	if k <= 0 {
		k = defaultDocResults
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := e.store.Documents().Search(ctx, vector, k*2)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []RetrievedDocument
	for _, h := range hits {
		if seen[h.ParentID] {
			continue
		}
		seen[h.ParentID] = true
		content := h.ParentText
		if content == "" {
			content = h.Content
		}
		out = append(out, RetrievedDocument{
			Source:     h.Source,
			HeaderPath: h.HeaderPath,
			Content:    content,
			Score:      h.Score,
		})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// RetrieveConversations returns the k most relevant past turns in
// chronological order, excluding the recency window before currentTurn.
// Early in a session nothing is old enough and the result is empty.
func (e *Engine) RetrieveConversations(ctx context.Context, query string, k, currentTurn int) ([]RetrievedTurn, error) {
	if !e.Enabled() {
		return nil, domain.ErrRetrievalDisabled
	}
	if k <= 0 {
		k = defaultConvResults
	}

	beforeTurn := currentTurn - recencyWindow
	if beforeTurn <= 0 {
		return nil, nil
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := e.store.Conversations().Search(ctx, vector, k, beforeTurn)
	if err != nil {
		return nil, err
	}

	out := make([]RetrievedTurn, len(hits))
	for i, h := range hits {
		out[i] = RetrievedTurn{TurnNumber: h.TurnNumber, Content: h.Content, Score: h.Score}
	}
	// Relevance picks the turns; the prompt presents them in the order
	// they happened.
	sort.Slice(out, func(i, j int) bool { return out[i].TurnNumber < out[j].TurnNumber })
	return out, nil
}

// AssembleContext builds the full retrieval bundle for a turn. Retrieval
// failures are logged and degrade to empty sections; a broken vector
// store must never abort a turn.
func (e *Engine) AssembleContext(ctx context.Context, state domain.ProjectState, query string, currentTurn int) ContextBundle {
	bundle := ContextBundle{
		OrgContext:    state.OrgContext,
		FileSummaries: state.FileSummaries,
	}
	if !e.Enabled() || strings.TrimSpace(query) == "" {
		return bundle
	}

	docs, err := e.RetrieveDocuments(ctx, query, defaultDocResults)
	if err != nil {
		e.log.Warn("document retrieval failed", zap.Error(err))
	} else {
		bundle.Documents = docs
	}

	turns, err := e.RetrieveConversations(ctx, query, defaultConvResults, currentTurn)
	if err != nil {
		e.log.Warn("conversation retrieval failed", zap.Error(err))
	} else {
		bundle.Conversations = turns
	}
	return bundle
}

// MinimalContext builds the bundle without any vector search. Used when
// routing decides the turn needs no retrieval.
func (e *Engine) MinimalContext(state domain.ProjectState) ContextBundle {
	return ContextBundle{
		OrgContext:    state.OrgContext,
		FileSummaries: state.FileSummaries,
	}
}

// FormatContextBlock renders a bundle as the markdown block injected into
// the system prompt. Empty sections are omitted entirely.
func FormatContextBlock(b ContextBundle) string {
	var sb strings.Builder

	if b.OrgContext != "" {
		sb.WriteString("## Organizational Context\n")
		sb.WriteString(b.OrgContext)
		sb.WriteString("\n\n")
	}
	if len(b.FileSummaries) > 0 {
		sb.WriteString("## Uploaded Documents\n")
		for _, f := range b.FileSummaries {
			fmt.Fprintf(&sb, "- %s: %s\n", f.Filename, f.Summary)
		}
		sb.WriteString("\n")
	}
	if len(b.Documents) > 0 {
		sb.WriteString("## Relevant Document Sections\n")
		for _, d := range b.Documents {
			fmt.Fprintf(&sb, "### %s > %s\n%s\n\n", d.Source, d.HeaderPath, d.Content)
		}
	}
	if len(b.Conversations) > 0 {
		sb.WriteString("## Relevant Earlier Discussion\n")
		for _, t := range b.Conversations {
			fmt.Fprintf(&sb, "### Turn %d\n%s\n\n", t.TurnNumber, t.Content)
		}
	}
	return strings.TrimSpace(sb.String())
}
