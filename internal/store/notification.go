package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
// Notifications are append-only.
type NotificationStore interface {
	// Create appends a notification record.
	Create(ctx context.Context, notification *domain.Notification) error

	// ListByOwner returns a page of the owner's notifications, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Notification, error)

	// CountByOwner returns the total number of notifications owned by ownerID.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
}
