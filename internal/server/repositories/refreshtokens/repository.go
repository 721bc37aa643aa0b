// Package refreshtokens declares the repository for long-lived refresh
// tokens and its PostgreSQL and in-memory implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/motek/internal/server/models"
)

// Repository defines operations for issuing, retrieving, revoking and
// sweeping refresh tokens.
type Repository interface {
	// Create stores token with Revoked=false and fills in ID and CreatedAt.
	// A token string that already exists yields common.ErrorAlreadyExists;
	// the caller must not retry with the same value.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find returns the row for an exact token match, or common.ErrorNotFound.
	// Expiry and revocation are left to the caller.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks the token revoked. Revoking an unknown or already
	// revoked token is not an error.
	Revoke(ctx context.Context, token string) error

	// RevokeAllForUser revokes every live token of userID and returns how
	// many rows changed.
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes rows that expired before now or were revoked.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
