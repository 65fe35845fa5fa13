// Package store reads the user and sales records the AI operations need.
package store

import (
	"context"
	"errors"

	"github.com/zen-systems/listingsmith/pkg/access"
	"github.com/zen-systems/listingsmith/pkg/listing"
)

// ErrUserNotFound is returned for unknown user IDs.
var ErrUserNotFound = errors.New("user not found")

// Users exposes per-user settings.
type Users interface {
	// Role returns the user's subscription tier.
	Role(ctx context.Context, userID string) (access.Role, error)

	// CaptionTemplate returns the user's saved caption template, or "".
	CaptionTemplate(ctx context.Context, userID string) (string, error)
}

// Sales exposes an owner's sales history.
type Sales interface {
	// RecentSold returns up to limit sold items owned by ownerID whose name
	// contains model (case-insensitive), newest first.
	RecentSold(ctx context.Context, ownerID, model string, limit int) ([]listing.Sale, error)
}
