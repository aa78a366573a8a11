package notifications

import (
	"context"

	"github.com/dmitrijs2005/madrasati/internal/client/models"
)

// Repository stores notifications. Operations on a single id return
// common.ErrorNotFound when no such notification exists.
type Repository interface {
	// Insert stores n. It reports false, without error, when a
	// notification with the same non-empty Ref already exists.
	Insert(ctx context.Context, n *models.Notification) (bool, error)

	// GetAll returns notifications newest first, optionally unread only.
	GetAll(ctx context.Context, unreadOnly bool) ([]models.Notification, error)

	GetByID(ctx context.Context, id string) (*models.Notification, error)

	MarkRead(ctx context.Context, id string) error

	// MarkAllRead returns how many notifications changed.
	MarkAllRead(ctx context.Context) (int, error)

	DeleteByID(ctx context.Context, id string) error

	CountUnread(ctx context.Context) (int, error)
}
