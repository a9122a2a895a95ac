// Package reports stores moderation reports raised against notes.
package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	// List returns reports newest first, narrowed by f.
	List(ctx context.Context, f models.ReportFilter) ([]*models.Report, error)
	SetStatus(ctx context.Context, id string, status models.ReportStatus) error
	CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error)
}

const reportColumns = `id, note_id, note_title, note_author, reporter_id, type, status, reason, created_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*models.Report, error) {
	r := &models.Report{}
	err := s.Scan(&r.ID, &r.NoteID, &r.NoteTitle, &r.NoteAuthor, &r.ReporterID, &r.Type, &r.Status, &r.Reason, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLRepository) Create(ctx context.Context, rep *models.Report) error {
	query :=
		`INSERT INTO reports (` + reportColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query, rep.ID, rep.NoteID, rep.NoteTitle, rep.NoteAuthor, rep.ReporterID,
		string(rep.Type), string(rep.Status), rep.Reason, rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	rep, err := scanReport(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rep, nil
}

func (r *SQLRepository) List(ctx context.Context, f models.ReportFilter) ([]*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports
		 WHERE ($1 = '' OR lower(note_title) LIKE $2 ESCAPE '!' OR lower(note_author) LIKE $2 ESCAPE '!'
		        OR lower(reason) LIKE $2 ESCAPE '!')
		   AND ($3 = '' OR status = $3)
		   AND ($4 = '' OR type = $4)
		 ORDER BY created_at DESC, id`

	search := strings.ToLower(strings.TrimSpace(f.Search))
	rows, err := r.db.QueryContext(ctx, query, search, dbx.ContainsPattern(search), string(f.Status), string(f.Type))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) SetStatus(ctx context.Context, id string, status models.ReportStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reports SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE status = $1`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
