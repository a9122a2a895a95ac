// Package ratings stores one star rating per user and note.
package ratings

import (
	"context"
	"fmt"
	"time"

	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
)

type Repository interface {
	// Upsert records value as userID's rating of noteID, replacing any earlier one.
	Upsert(ctx context.Context, userID, noteID string, value int) error
	// Summary returns the mean and count of a note's ratings; zero when unrated.
	Summary(ctx context.Context, noteID string) (mean float64, count int64, err error)
	DeleteByNote(ctx context.Context, noteID string) error
}

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Upsert(ctx context.Context, userID, noteID string, value int) error {
	query :=
		`INSERT INTO ratings (user_id, note_id, value, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, note_id) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`

	if _, err := r.db.ExecContext(ctx, query, userID, noteID, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Summary(ctx context.Context, noteID string) (float64, int64, error) {
	query := `SELECT COALESCE(CAST(AVG(value) AS DOUBLE PRECISION), 0), COUNT(*) FROM ratings WHERE note_id = $1`

	var mean float64
	var count int64
	if err := r.db.QueryRowContext(ctx, query, noteID).Scan(&mean, &count); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return mean, count, nil
}

func (r *SQLRepository) DeleteByNote(ctx context.Context, noteID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE note_id = $1`, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
