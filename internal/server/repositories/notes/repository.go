package notes

import (
	"context"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

// Totals aggregates the whole note collection.
type Totals struct {
	Notes         int64
	Downloads     int64
	AverageRating float64
}

// Repository persists notes and their tag lists. Collections come back in
// storage order (creation time, then id).
type Repository interface {
	Create(ctx context.Context, n *models.Note) error
	// Update overwrites the editable fields and tags of n. No version check.
	Update(ctx context.Context, n *models.Note) error
	// Delete removes the note row and its tags.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context) ([]*models.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error)
	ListBookmarked(ctx context.Context, userID string) ([]*models.Note, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error
	SetRating(ctx context.Context, id string, mean float64, count int64) error
	SetFileStatus(ctx context.Context, id string, status models.FileStatus) error
	Totals(ctx context.Context) (Totals, error)
}
