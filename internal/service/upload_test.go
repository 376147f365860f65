package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta362/project-forge/internal/domain"
)

func TestUploader_UploadIngestsAndRecords(t *testing.T) {
	dir := t.TempDir()
	engine, store := newTestEngine(t, &stubEmbedder{})
	uploader := NewUploader(dir, engine, nil, "", nil)
	sess := domain.NewSession("p")

	md := "# Plan\n" + words(120)
	entry, err := uploader.Upload(context.Background(), sess, "plan.md", []byte(md))
	require.NoError(t, err)

	assert.Equal(t, "plan.md", entry.Filename)
	assert.Equal(t, 1, entry.ChunkCount)
	assert.NotEmpty(t, entry.Summary)
	assert.NotEmpty(t, entry.UploadedAt)
	require.Len(t, sess.FileSummaries, 1)

	// Original bytes preserved on disk.
	saved, err := os.ReadFile(filepath.Join(dir, "plan.md"))
	require.NoError(t, err)
	assert.Equal(t, md, string(saved))

	n, err := store.Documents().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUploader_ReuploadReplacesEntry(t *testing.T) {
	engine, _ := newTestEngine(t, &stubEmbedder{})
	uploader := NewUploader(t.TempDir(), engine, nil, "", nil)
	sess := domain.NewSession("p")
	ctx := context.Background()

	_, err := uploader.Upload(ctx, sess, "plan.md", []byte("# A\n"+words(120)))
	require.NoError(t, err)
	_, err = uploader.Upload(ctx, sess, "plan.md", []byte("# A\n"+words(120)+"\n# B\n"+words(120)))
	require.NoError(t, err)

	require.Len(t, sess.FileSummaries, 1)
	assert.Equal(t, 2, sess.FileSummaries[0].ChunkCount)
}

func TestUploader_UnsupportedTypePreservesOriginal(t *testing.T) {
	dir := t.TempDir()
	engine, _ := newTestEngine(t, &stubEmbedder{})
	uploader := NewUploader(dir, engine, nil, "", nil)
	sess := domain.NewSession("p")

	_, err := uploader.Upload(context.Background(), sess, "deck.pptx", []byte{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Empty(t, sess.FileSummaries)

	// The raw bytes were saved before conversion was attempted.
	_, statErr := os.Stat(filepath.Join(dir, "deck.pptx"))
	assert.NoError(t, statErr)
}

func TestUploader_StripsPathComponents(t *testing.T) {
	engine, _ := newTestEngine(t, &stubEmbedder{})
	uploader := NewUploader(t.TempDir(), engine, nil, "", nil)
	sess := domain.NewSession("p")

	entry, err := uploader.Upload(context.Background(), sess, "../../etc/notes.md", []byte("# N\n"+words(120)))
	require.NoError(t, err)
	assert.Equal(t, "notes.md", entry.Filename)
}

func TestUploader_Remove(t *testing.T) {
	engine, store := newTestEngine(t, &stubEmbedder{})
	uploader := NewUploader(t.TempDir(), engine, nil, "", nil)
	sess := domain.NewSession("p")
	ctx := context.Background()

	_, err := uploader.Upload(ctx, sess, "plan.md", []byte("# A\n"+words(120)))
	require.NoError(t, err)

	require.NoError(t, uploader.Remove(ctx, sess, "plan.md"))
	assert.Empty(t, sess.FileSummaries)

	n, err := store.Documents().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, uploader.Remove(ctx, sess, "missing.md"), domain.ErrDocumentNotFound)
}
