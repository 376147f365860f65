// Package persistence stores project state on disk: one directory per
// project holding the session snapshot, the vector database, uploaded
// originals, rendered artifacts and the editable context file.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/domain"
)

// SchemaVersion identifies the snapshot layout. Loading a snapshot with a
// different version logs a warning and proceeds on a best-effort basis;
// fields the current schema does not know are dropped, missing fields
// keep their defaults.
const SchemaVersion = "1.0"

type snapshot struct {
	SchemaVersion string          `json:"schema_version"`
	SavedAt       time.Time       `json:"saved_at"`
	Session       *domain.Session `json:"session"`
}

// SaveSession writes the session snapshot atomically: a temp file in the
// same directory is renamed over the target, so a crash mid-write leaves
// the previous snapshot intact.
func SaveSession(path string, sess *domain.Session) error {
	data, err := json.MarshalIndent(snapshot{
		SchemaVersion: SchemaVersion,
		SavedAt:       time.Now().UTC(),
		Session:       sess,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace session snapshot: %w", err)
	}
	return nil
}

// LoadSession reads a snapshot, overlaying it onto a defaults-initialized
// session so snapshots written by older schemas load with sane values for
// fields they predate. A missing file returns domain.ErrProjectNotFound.
func LoadSession(path string, log *zap.Logger) (*domain.Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("read session snapshot: %w", err)
	}

	snap := snapshot{Session: domain.NewSession("")}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse session snapshot: %w", err)
	}
	if snap.SchemaVersion != SchemaVersion {
		log.Warn("session snapshot schema mismatch",
			zap.String("found", snap.SchemaVersion),
			zap.String("expected", SchemaVersion))
	}

	sess := snap.Session
	// Containers may be nulled by hand-edited snapshots; restore them.
	if sess.Messages == nil {
		sess.Messages = []domain.Message{}
	}
	if sess.Register == nil {
		sess.Register = domain.NewAssumptionRegister()
	}
	if sess.Register.Items == nil {
		sess.Register.Items = make(map[string]*domain.Assumption)
	}
	if sess.Skeleton == nil {
		sess.Skeleton = domain.NewDocumentSkeleton()
	}
	if sess.Skeleton.Stakeholders == nil {
		sess.Skeleton.Stakeholders = make(map[string]*domain.Stakeholder)
	}
	if sess.Routing == nil {
		sess.Routing = domain.NewRoutingContext()
	}
	if sess.Org == nil {
		sess.Org = &domain.OrgContext{}
	}
	if sess.CurrentPhase == "" {
		sess.CurrentPhase = domain.PhaseGathering
	}
	return sess, nil
}
