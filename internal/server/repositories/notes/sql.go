// Package notes provides the SQL-backed note repository.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

const noteColumns = `n.id, n.title, n.description, n.content, n.subject, n.file_ref, n.file_type, n.file_status,
	n.owner_id, n.owner_name, n.rating, n.num_ratings, n.download_count, n.view_count, n.created_at, n.updated_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.Note, error) {
	n := &models.Note{Tags: []string{}}
	err := s.Scan(&n.ID, &n.Title, &n.Description, &n.Content, &n.Subject, &n.FileRef, &n.FileType, &n.FileStatus,
		&n.OwnerID, &n.OwnerName, &n.Rating, &n.NumRatings, &n.DownloadCount, &n.ViewCount, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *SQLRepository) Create(ctx context.Context, n *models.Note) error {
	query :=
		`INSERT INTO notes (id, title, description, content, subject, file_ref, file_type, file_status,
			owner_id, owner_name, rating, num_ratings, download_count, view_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Title, n.Description, n.Content, n.Subject, n.FileRef, string(n.FileType), string(n.FileStatus),
		n.OwnerID, n.OwnerName, n.Rating, n.NumRatings, n.DownloadCount, n.ViewCount, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return r.insertTags(ctx, n.ID, n.Tags)
}

func (r *SQLRepository) insertTags(ctx context.Context, noteID string, tags []string) error {
	query := `INSERT INTO note_tags (note_id, position, tag) VALUES ($1, $2, $3)`
	for i, tag := range tags {
		if _, err := r.db.ExecContext(ctx, query, noteID, i, tag); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *SQLRepository) deleteTags(ctx context.Context, noteID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = $1`, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Update(ctx context.Context, n *models.Note) error {
	query :=
		`UPDATE notes SET title = $2, description = $3, content = $4, subject = $5, file_ref = $6,
			file_type = $7, file_status = $8, updated_at = $9
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		n.ID, n.Title, n.Description, n.Content, n.Subject, n.FileRef,
		string(n.FileType), string(n.FileStatus), n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return err
	}

	if err := r.deleteTags(ctx, n.ID); err != nil {
		return err
	}
	return r.insertTags(ctx, n.ID, n.Tags)
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	if err := r.deleteTags(ctx, id); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes n WHERE n.id = $1`

	n, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.attachTags(ctx, []*models.Note{n}); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]*models.Note, error) {
	return r.list(ctx, `SELECT `+noteColumns+` FROM notes n ORDER BY n.created_at, n.id`)
}

func (r *SQLRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error) {
	return r.list(ctx, `SELECT `+noteColumns+` FROM notes n WHERE n.owner_id = $1 ORDER BY n.created_at, n.id`, ownerID)
}

func (r *SQLRepository) ListBookmarked(ctx context.Context, userID string) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes n
		 JOIN bookmarks b ON b.note_id = n.id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at, n.id`
	return r.list(ctx, query, userID)
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.attachTags(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachTags loads tags for notes in a single query.
func (r *SQLRepository) attachTags(ctx context.Context, notes []*models.Note) error {
	if len(notes) == 0 {
		return nil
	}

	byID := make(map[string]*models.Note, len(notes))
	args := make([]any, 0, len(notes))
	marks := make([]string, 0, len(notes))
	for i, n := range notes {
		byID[n.ID] = n
		args = append(args, n.ID)
		marks = append(marks, "$"+strconv.Itoa(i+1))
	}

	query := `SELECT note_id, tag FROM note_tags WHERE note_id IN (` + strings.Join(marks, ", ") + `)
		 ORDER BY note_id, position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var noteID, tag string
		if err := rows.Scan(&noteID, &tag); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n, ok := byID[noteID]; ok {
			n.Tags = append(n.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) IncrementViews(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE notes SET view_count = view_count + 1 WHERE id = $1`, id)
}

func (r *SQLRepository) IncrementDownloads(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE notes SET download_count = download_count + 1 WHERE id = $1`, id)
}

func (r *SQLRepository) SetRating(ctx context.Context, id string, mean float64, count int64) error {
	return r.exec(ctx, `UPDATE notes SET rating = $2, num_ratings = $3 WHERE id = $1`, id, mean, count)
}

func (r *SQLRepository) SetFileStatus(ctx context.Context, id string, status models.FileStatus) error {
	return r.exec(ctx, `UPDATE notes SET file_status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC())
}

func (r *SQLRepository) Totals(ctx context.Context) (Totals, error) {
	query :=
		`SELECT COUNT(*), CAST(COALESCE(SUM(download_count), 0) AS BIGINT),
			COALESCE(AVG(CASE WHEN rating > 0 THEN rating END), 0)
		 FROM notes`

	var t Totals
	if err := r.db.QueryRowContext(ctx, query).Scan(&t.Notes, &t.Downloads, &t.AverageRating); err != nil {
		return Totals{}, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
