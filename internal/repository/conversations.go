package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// TurnRecord is one indexed conversation turn: the user message and the
// assistant reply combined into a single searchable document.
type TurnRecord struct {
	ID         string
	TurnNumber int
	Mode       string
	Probe      string
	Content    string
	Embedding  []float32
}

// TurnHit is a scored conversation search result.
type TurnHit struct {
	TurnRecord
	Score float64
}

type ConversationRepository struct {
	db *sql.DB
}

// Upsert inserts or replaces a turn by id. Re-processing a turn after a
// crash overwrites the earlier row instead of duplicating it.
func (r *ConversationRepository) Upsert(ctx context.Context, rec TurnRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversation_turns
			(id, turn_number, mode, probe, content, embedding)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TurnNumber, rec.Mode, rec.Probe, rec.Content, encodeVector(rec.Embedding))
	if err != nil {
		return fmt.Errorf("upsert turn %s: %w", rec.ID, err)
	}
	return nil
}

// Count returns the number of indexed turns.
func (r *ConversationRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversation_turns`).Scan(&n)
	return n, err
}

// Search returns the limit highest-scoring turns whose turn number is
// strictly below beforeTurn, best first. Turns at or past the cutoff are
// already present verbatim in the prompt and must not be re-retrieved.
func (r *ConversationRepository) Search(ctx context.Context, query []float32, limit, beforeTurn int) ([]TurnHit, error) {
	if limit <= 0 || beforeTurn <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, turn_number, mode, probe, content, embedding
		 FROM conversation_turns WHERE turn_number < ?`, beforeTurn)
	if err != nil {
		return nil, fmt.Errorf("search conversation turns: %w", err)
	}
	defer rows.Close()

	var hits []TurnHit
	for rows.Next() {
		var rec TurnRecord
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.TurnNumber, &rec.Mode, &rec.Probe, &rec.Content, &blob); err != nil {
			return nil, err
		}
		emb, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("turn %s: %w", rec.ID, err)
		}
		rec.Embedding = emb
		hits = append(hits, TurnHit{
			TurnRecord: rec,
			Score:      cosineSimilarity(query, emb),
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
