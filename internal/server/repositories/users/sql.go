// Package users provides the SQL-backed user account repository.
package users

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

const userColumns = `id, username, email, password_hash, verified, verify_token, role, status,
	full_name, bio, institution, created_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	u := &models.User{}
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Verified, &u.VerifyToken,
		&u.Role, &u.Status, &u.FullName, &u.Bio, &u.Institution, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *SQLRepository) Create(ctx context.Context, u *models.User) error {
	query :=
		`INSERT INTO users (id, username, email, password_hash, verified, verify_token, role, status,
			full_name, bio, institution, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Verified, u.VerifyToken, string(u.Role), string(u.Status),
		u.FullName, u.Bio, u.Institution, u.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `lower(email) = lower($1)`, strings.TrimSpace(email))
}

func (r *SQLRepository) GetByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, `verify_token = $1`, token)
}

func (r *SQLRepository) Update(ctx context.Context, u *models.User) error {
	query :=
		`UPDATE users SET username = $2, password_hash = $3, verified = $4, verify_token = $5,
			role = $6, status = $7, full_name = $8, bio = $9, institution = $10
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		u.ID, u.Username, u.PasswordHash, u.Verified, u.VerifyToken,
		string(u.Role), string(u.Status), u.FullName, u.Bio, u.Institution)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) List(ctx context.Context, search string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE $1 = '' OR lower(username) LIKE $2 ESCAPE '!' OR lower(email) LIKE $2 ESCAPE '!'
		 ORDER BY created_at, id`

	search = strings.ToLower(strings.TrimSpace(search))
	rows, err := r.db.QueryContext(ctx, query, search, dbx.ContainsPattern(search))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, int64, error) {
	query :=
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0)
		 FROM users`

	var total, active int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return total, active, nil
}
