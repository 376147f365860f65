// Package repository persists embedded documents and conversation turns in
// an embedded SQLite database, one file per project. Embeddings are stored
// as float32 blobs and similarity is computed in process; at per-project
// corpus sizes a brute-force scan is faster than maintaining an index.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id             TEXT PRIMARY KEY,
	source         TEXT NOT NULL,
	header_path    TEXT NOT NULL DEFAULT '',
	level          INTEGER NOT NULL DEFAULT 0,
	parent_id      TEXT NOT NULL DEFAULT '',
	parent_text    TEXT NOT NULL DEFAULT '',
	content        TEXT NOT NULL,
	embedding      BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source);
CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents(parent_id);

CREATE TABLE IF NOT EXISTS conversation_turns (
	id          TEXT PRIMARY KEY,
	turn_number INTEGER NOT NULL,
	mode        TEXT NOT NULL DEFAULT '',
	probe       TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL,
	embedding   BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_number ON conversation_turns(turn_number);
`

// VectorStore owns the SQLite handle for one project and hands out the
// two collection repositories backed by it.
type VectorStore struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

// OpenVectorStore opens (creating if needed) the database at path and
// ensures the schema. Callers in-process should prefer SharedVectorStore.
func OpenVectorStore(path string, log *zap.Logger) (*VectorStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open vector store %s: %w", path, err)
	}
	// SQLite allows one writer; serialize through a single connection
	// rather than surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply vector store schema: %w", err)
	}
	return &VectorStore{db: db, path: path, log: log}, nil
}

var (
	storesMu sync.Mutex
	stores   = make(map[string]*VectorStore)
)

// SharedVectorStore returns the process-wide store for a database path,
// opening it on first use. Two callers with the same path always get the
// same handle, so the single-writer constraint holds across the process.
func SharedVectorStore(path string, log *zap.Logger) (*VectorStore, error) {
	storesMu.Lock()
	defer storesMu.Unlock()

	if s, ok := stores[path]; ok {
		return s, nil
	}
	s, err := OpenVectorStore(path, log)
	if err != nil {
		return nil, err
	}
	stores[path] = s
	return s, nil
}

// Documents returns the document collection repository.
func (s *VectorStore) Documents() *DocumentRepository {
	return &DocumentRepository{db: s.db}
}

// Conversations returns the conversation-turn collection repository.
func (s *VectorStore) Conversations() *ConversationRepository {
	return &ConversationRepository{db: s.db}
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// Close releases the handle and removes it from the shared registry.
func (s *VectorStore) Close() error {
	storesMu.Lock()
	delete(stores, s.path)
	storesMu.Unlock()
	return s.db.Close()
}
