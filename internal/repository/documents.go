package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// DocumentRecord is one leaf chunk of an ingested file, with its parent
// section text carried alongside for context expansion at retrieval time.
type DocumentRecord struct {
	ID         string
	Source     string
	HeaderPath string
	Level      int
	ParentID   string
	ParentText string
	Content    string
	Embedding  []float32
}

// DocumentHit is a scored search result. Score is cosine similarity,
// higher is better.
type DocumentHit struct {
	DocumentRecord
	Score float64
}

type DocumentRepository struct {
	db *sql.DB
}

// UpsertBatch inserts or replaces records by id. Re-ingesting a file with
// the same chunk ids overwrites the previous rows.
func (r *DocumentRepository) UpsertBatch(ctx context.Context, records []DocumentRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin document upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO documents
			(id, source, header_path, level, parent_id, parent_text, content, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare document upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Source, rec.HeaderPath, rec.Level,
			rec.ParentID, rec.ParentText, rec.Content, encodeVector(rec.Embedding),
		); err != nil {
			return fmt.Errorf("upsert document %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteBySource removes every chunk ingested from the named file and
// returns how many rows were deleted.
func (r *DocumentRepository) DeleteBySource(ctx context.Context, source string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("delete documents for %s: %w", source, err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored chunks.
func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// Sources lists the distinct source filenames present in the collection.
func (r *DocumentRepository) Sources(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT source FROM documents ORDER BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// Search scans the collection and returns the limit highest-scoring chunks
// for the query embedding, best first.
func (r *DocumentRepository) Search(ctx context.Context, query []float32, limit int) ([]DocumentHit, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source, header_path, level, parent_id, parent_text, content, embedding FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var hits []DocumentHit
	for rows.Next() {
		var rec DocumentRecord
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.HeaderPath, &rec.Level,
			&rec.ParentID, &rec.ParentText, &rec.Content, &blob); err != nil {
			return nil, err
		}
		emb, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", rec.ID, err)
		}
		rec.Embedding = emb
		hits = append(hits, DocumentHit{
			DocumentRecord: rec,
			Score:          cosineSimilarity(query, emb),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
