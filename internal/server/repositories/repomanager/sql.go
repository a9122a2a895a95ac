// Package repomanager wires the SQL repositories and goose migrations for
// PostgreSQL (pgx) and embedded SQLite (modernc.org/sqlite).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
	"github.com/samudhan2008/sa-notes-beta/internal/server/migrations"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/bookmarks"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/comments"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/notes"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/ratings"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/refreshtokens"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/reports"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/users"
)

// SQLRepositoryManager vends repositories for one dialect. Queries are
// written with $N placeholders and rebound for SQLite.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func NewSQLRepositoryManager(d dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: d}
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

func (m *SQLRepositoryManager) bind(db dbx.DBTX) dbx.DBTX {
	return dbx.WithDialect(db, m.dialect)
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(m.bind(db))
}

func (m *SQLRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewSQLRepository(m.bind(db))
}

func (m *SQLRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewSQLRepository(m.bind(db))
}

func (m *SQLRepositoryManager) Bookmarks(db dbx.DBTX) bookmarks.Repository {
	return bookmarks.NewSQLRepository(m.bind(db))
}

func (m *SQLRepositoryManager) Ratings(db dbx.DBTX) ratings.Repository {
	return ratings.NewSQLRepository(m.bind(db))
}

func (m *SQLRepositoryManager) Comments(db dbx.DBTX) comments.Repository {
	return comments.NewSQLRepository(m.bind(db))
}

func (m *SQLRepositoryManager) Reports(db dbx.DBTX) reports.Repository {
	return reports.NewSQLRepository(m.bind(db))
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.GooseDialect()); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, string(m.dialect)); err != nil {
		return err
	}
	return nil
}

// Open connects to the database named by driver and dsn and verifies the
// connection. SQLite handles are limited to one connection so an in-memory
// database is shared by every caller.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, *SQLRepositoryManager, error) {
	d, err := dbx.ParseDialect(driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", d, err)
	}
	if d == dbx.SQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", d, err)
	}

	return db, NewSQLRepositoryManager(d), nil
}
