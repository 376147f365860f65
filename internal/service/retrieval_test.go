package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta362/project-forge/internal/domain"
	"github.com/gupta362/project-forge/internal/repository"
)

const testDim = 8

// stubEmbedder returns fixed vectors per exact text, and a default
// direction for everything else.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return unit(testDim, testDim-1), nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func unit(dim, i int) []float32 {
	v := make([]float32, dim)
	v[i] = 1
	return v
}

func newTestEngine(t *testing.T, embedder Embedder) (*Engine, *repository.VectorStore) {
	t.Helper()
	store, err := repository.OpenVectorStore(filepath.Join(t.TempDir(), "vectors.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewEngine(store, embedder, nil), store
}

func TestEngine_IngestFileAssignsChunkIDs(t *testing.T) {
	engine, store := newTestEngine(t, &stubEmbedder{})
	ctx := context.Background()

	md := "# One\n" + words(120) + "\n# Two\n" + words(120)
	n, err := engine.IngestFile(ctx, "plan.md", []byte(md))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := store.Documents().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Re-ingest replaces instead of accumulating.
	n, err = engine.IngestFile(ctx, "plan.md", []byte("# One\n"+words(120)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err = store.Documents().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEngine_IngestUnsupportedFile(t *testing.T) {
	engine, _ := newTestEngine(t, &stubEmbedder{})

	_, err := engine.IngestFile(context.Background(), "report.docx", []byte{1, 2})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestEngine_DisabledWithoutEmbedder(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	assert.False(t, engine.Enabled())
	_, err := engine.IngestFile(context.Background(), "plan.md", []byte("# A\ntext"))
	assert.ErrorIs(t, err, domain.ErrRetrievalDisabled)
	_, err = engine.RetrieveDocuments(context.Background(), "query", 3)
	assert.ErrorIs(t, err, domain.ErrRetrievalDisabled)
}

func TestEngine_RetrieveDocumentsDeduplicatesParents(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"the query": unit(testDim, 0),
	}}
	engine, store := newTestEngine(t, embedder)
	ctx := context.Background()

	near := make([]float32, testDim)
	near[0], near[1] = 0.9, 0.1
	require.NoError(t, store.Documents().UpsertBatch(ctx, []repository.DocumentRecord{
		{ID: "a.md_chunk_0", Source: "a.md", HeaderPath: "S1", ParentID: "p1", ParentText: "section one full", Content: "leaf a", Embedding: unit(testDim, 0)},
		{ID: "a.md_chunk_1", Source: "a.md", HeaderPath: "S1", ParentID: "p1", ParentText: "section one full", Content: "leaf b", Embedding: near},
		{ID: "a.md_chunk_2", Source: "a.md", HeaderPath: "S2", ParentID: "p2", ParentText: "section two full", Content: "leaf c", Embedding: unit(testDim, 1)},
	}))

	docs, err := engine.RetrieveDocuments(ctx, "the query", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Both top leaves share parent p1; only one survives, and a second
	// parent fills the remaining slot with the full section text.
	assert.Equal(t, "section one full", docs[0].Content)
	assert.Equal(t, "section two full", docs[1].Content)
	assert.Greater(t, docs[0].Score, docs[1].Score)
}

func TestEngine_RetrieveConversationsRespectsRecencyWindow(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"the query": unit(testDim, 0),
	}}
	engine, store := newTestEngine(t, embedder)
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		require.NoError(t, store.Conversations().Upsert(ctx, repository.TurnRecord{
			ID:         "turn_" + string(rune('0'+i)),
			TurnNumber: i,
			Content:    "turn content",
			Embedding:  unit(testDim, 0),
		}))
	}

	// currentTurn 6, window 3: only turns 1 and 2 are old enough.
	turns, err := engine.RetrieveConversations(ctx, "the query", 10, 6)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	for _, tr := range turns {
		assert.Less(t, tr.TurnNumber, 3)
	}

	// Early session: nothing clears the window.
	turns, err = engine.RetrieveConversations(ctx, "the query", 10, 3)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestEngine_IndexTurnIsIdempotent(t *testing.T) {
	engine, store := newTestEngine(t, &stubEmbedder{})
	ctx := context.Background()

	require.NoError(t, engine.IndexTurn(ctx, 4, "Asked about timing pressure.", domain.ModeDiscovery, "Why Now"))
	require.NoError(t, engine.IndexTurn(ctx, 4, "Asked about timing pressure; answer revised.", domain.ModeDiscovery, "Why Now"))

	n, err := store.Conversations().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEngine_RetrieveConversationsChronological(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"the query":      unit(testDim, 0),
		"weaker match":   {0.5, 0.5, 0, 0, 0, 0, 0, 0},
		"stronger match": unit(testDim, 0),
	}}
	engine, _ := newTestEngine(t, embedder)
	ctx := context.Background()

	require.NoError(t, engine.IndexTurn(ctx, 1, "weaker match", domain.ModeNone, ""))
	require.NoError(t, engine.IndexTurn(ctx, 2, "stronger match", domain.ModeNone, ""))

	// Relevance would put turn 2 first; the result comes back in turn order.
	turns, err := engine.RetrieveConversations(ctx, "the query", 5, 6)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, 1, turns[0].TurnNumber)
	assert.Equal(t, 2, turns[1].TurnNumber)
	assert.Greater(t, turns[1].Score, turns[0].Score)
}

func TestEngine_AssembleContextDegradesWhenDisabled(t *testing.T) {
	engine := NewEngine(nil, nil, nil)

	state := domain.ProjectState{
		OrgContext:    "Acme Corp",
		FileSummaries: []domain.FileSummary{{Filename: "plan.md", Summary: "the plan"}},
	}
	bundle := engine.AssembleContext(context.Background(), state, "query", 5)

	assert.Equal(t, "Acme Corp", bundle.OrgContext)
	assert.Len(t, bundle.FileSummaries, 1)
	assert.Empty(t, bundle.Documents)
	assert.Empty(t, bundle.Conversations)
}

func TestFormatContextBlock(t *testing.T) {
	bundle := ContextBundle{
		OrgContext:    "Acme Corp",
		FileSummaries: []domain.FileSummary{{Filename: "plan.md", Summary: "the plan"}},
		Documents: []RetrievedDocument{
			{Source: "plan.md", HeaderPath: "Goals", Content: "goal text", Score: 0.9},
		},
		Conversations: []RetrievedTurn{
			{TurnNumber: 2, Content: "User: a\n\nAssistant: b", Score: 0.8},
		},
	}

	block := FormatContextBlock(bundle)
	assert.Contains(t, block, "## Organizational Context\nAcme Corp")
	assert.Contains(t, block, "- plan.md: the plan")
	assert.Contains(t, block, "### plan.md > Goals\ngoal text")
	assert.Contains(t, block, "### Turn 2")

	assert.Empty(t, FormatContextBlock(ContextBundle{}))
	minimal := FormatContextBlock(ContextBundle{OrgContext: "x"})
	assert.False(t, strings.Contains(minimal, "Uploaded Documents"))
}
