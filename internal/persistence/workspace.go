package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Workspace lays out the on-disk structure under a root directory:
//
//	<root>/<project-slug>/
//	    session.json
//	    vectors.db
//	    context.md
//	    uploads/
//	    artifacts/
type Workspace struct {
	root string
}

func NewWorkspace(root string) *Workspace {
	return &Workspace{root: root}
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a project name into a filesystem-safe directory name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "project"
	}
	return slug
}

// EnsureProject creates the project directory tree and returns its root.
func (w *Workspace) EnsureProject(name string) (string, error) {
	dir := w.ProjectDir(name)
	for _, d := range []string{dir, filepath.Join(dir, "uploads"), filepath.Join(dir, "artifacts")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return "", fmt.Errorf("create project dir: %w", err)
		}
	}
	return dir, nil
}

func (w *Workspace) ProjectDir(name string) string {
	return filepath.Join(w.root, Slugify(name))
}

func (w *Workspace) SessionPath(name string) string {
	return filepath.Join(w.ProjectDir(name), "session.json")
}

func (w *Workspace) VectorDBPath(name string) string {
	return filepath.Join(w.ProjectDir(name), "vectors.db")
}

func (w *Workspace) UploadsDir(name string) string {
	return filepath.Join(w.ProjectDir(name), "uploads")
}

func (w *Workspace) ArtifactsDir(name string) string {
	return filepath.Join(w.ProjectDir(name), "artifacts")
}

func (w *Workspace) ContextPath(name string) string {
	return filepath.Join(w.ProjectDir(name), "context.md")
}

// ListProjects returns the slugs of all projects with a session snapshot,
// sorted alphabetically.
func (w *Workspace) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}

	var projects []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(w.root, e.Name(), "session.json")); err == nil {
			projects = append(projects, e.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// ReadContext returns the project's editable context file, or empty when
// none exists. The file is user-editable between sessions.
func (w *Workspace) ReadContext(name string) (string, error) {
	data, err := os.ReadFile(w.ContextPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read context file: %w", err)
	}
	return string(data), nil
}

// WriteContext overwrites the project's context file.
func (w *Workspace) WriteContext(name, content string) error {
	if err := os.WriteFile(w.ContextPath(name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write context file: %w", err)
	}
	return nil
}
