package repomanager

import (
	"context"
	"database/sql"

	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/bookmarks"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/comments"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/notes"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/ratings"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/refreshtokens"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/reports"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// use the same repositories with a *sql.DB or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Notes(db dbx.DBTX) notes.Repository
	Bookmarks(db dbx.DBTX) bookmarks.Repository
	Ratings(db dbx.DBTX) ratings.Repository
	Comments(db dbx.DBTX) comments.Repository
	Reports(db dbx.DBTX) reports.Repository
}
