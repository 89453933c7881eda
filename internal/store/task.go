package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// ListByOwner returns a page of the owner's tasks, newest first.
	// Returns an empty slice if the owner has no tasks in range.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Task, error)

	// CountByOwner returns the total number of tasks owned by ownerID.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
}
