// Package bookmarks stores which notes each user has bookmarked.
package bookmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
)

type Repository interface {
	// Add is idempotent: bookmarking twice keeps a single row.
	Add(ctx context.Context, userID, noteID string) error
	Remove(ctx context.Context, userID, noteID string) error
	DeleteByNote(ctx context.Context, noteID string) error
}

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Add(ctx context.Context, userID, noteID string) error {
	query :=
		`INSERT INTO bookmarks (user_id, note_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, note_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, noteID, time.Now().UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Remove(ctx context.Context, userID, noteID string) error {
	query := `DELETE FROM bookmarks WHERE user_id = $1 AND note_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) DeleteByNote(ctx context.Context, noteID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE note_id = $1`, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
