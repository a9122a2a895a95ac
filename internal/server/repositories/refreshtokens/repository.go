package refreshtokens

import (
	"context"
	"time"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

// Repository issues, looks up and revokes refresh tokens.
type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks a token up by its opaque string. Absent tokens yield a
	// not-found error.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	DeleteByUser(ctx context.Context, userID string) error
}
