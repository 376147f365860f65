package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta362/project-forge/internal/domain"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Churn Project", "churn-project"},
		{"  Q3 / Retention!! ", "q3-retention"},
		{"already-slugged", "already-slugged"},
		{"ALLCAPS", "allcaps"},
		{"", "project"},
		{"///", "project"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestWorkspace_EnsureProjectLayout(t *testing.T) {
	ws := NewWorkspace(t.TempDir())

	dir, err := ws.EnsureProject("Churn Project")
	require.NoError(t, err)

	assert.DirExists(t, dir)
	assert.DirExists(t, filepath.Join(dir, "uploads"))
	assert.DirExists(t, filepath.Join(dir, "artifacts"))
	assert.Equal(t, dir, ws.ProjectDir("churn project"))
	assert.Equal(t, filepath.Join(dir, "session.json"), ws.SessionPath("Churn Project"))
	assert.Equal(t, filepath.Join(dir, "vectors.db"), ws.VectorDBPath("Churn Project"))
}

func TestWorkspace_ListProjects(t *testing.T) {
	root := t.TempDir()
	ws := NewWorkspace(root)

	_, err := ws.EnsureProject("beta")
	require.NoError(t, err)
	_, err = ws.EnsureProject("alpha")
	require.NoError(t, err)

	// Only directories with a session snapshot count as projects.
	require.NoError(t, SaveSession(ws.SessionPath("alpha"), domain.NewSession("alpha")))

	projects, err := ws.ListProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, projects)

	require.NoError(t, SaveSession(ws.SessionPath("beta"), domain.NewSession("beta")))
	projects, err = ws.ListProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, projects)
}

func TestWorkspace_ListProjectsMissingRoot(t *testing.T) {
	ws := NewWorkspace(filepath.Join(t.TempDir(), "never-created"))

	projects, err := ws.ListProjects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestWorkspace_ContextFile(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	_, err := ws.EnsureProject("p")
	require.NoError(t, err)

	// Missing file reads as empty, not an error.
	content, err := ws.ReadContext("p")
	require.NoError(t, err)
	assert.Empty(t, content)

	require.NoError(t, ws.WriteContext("p", "# Acme\n\nInternal notes."))
	content, err = ws.ReadContext("p")
	require.NoError(t, err)
	assert.Equal(t, "# Acme\n\nInternal notes.", content)

	// User edits are visible on the next read.
	require.NoError(t, os.WriteFile(ws.ContextPath("p"), []byte("edited"), 0o644))
	content, err = ws.ReadContext("p")
	require.NoError(t, err)
	assert.Equal(t, "edited", content)
}
