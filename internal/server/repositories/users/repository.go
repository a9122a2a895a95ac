package users

import (
	"context"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

// Repository persists user accounts.
type Repository interface {
	// Create inserts u. A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerifyToken(ctx context.Context, token string) (*models.User, error)
	// Update rewrites every mutable column of u.
	Update(ctx context.Context, u *models.User) error
	// List returns users whose username or email contains search, oldest first.
	List(ctx context.Context, search string) ([]*models.User, error)
	Count(ctx context.Context) (total int64, active int64, err error)
}
