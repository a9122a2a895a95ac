// Package comments stores reader comments on notes.
package comments

import (
	"context"
	"fmt"

	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Comment) error
	// ListByNote returns comments oldest first.
	ListByNote(ctx context.Context, noteID string) ([]*models.Comment, error)
	DeleteByNote(ctx context.Context, noteID string) error
}

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Comment) error {
	query :=
		`INSERT INTO comments (id, note_id, author_id, author, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.NoteID, c.AuthorID, c.Author, c.Content, c.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListByNote(ctx context.Context, noteID string) ([]*models.Comment, error) {
	query :=
		`SELECT id, note_id, author_id, author, content, created_at
		 FROM comments
		 WHERE note_id = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Comment{}
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.NoteID, &c.AuthorID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) DeleteByNote(ctx context.Context, noteID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE note_id = $1`, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
