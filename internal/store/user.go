package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// UserStore persists accounts. Users are written outside the task unit of
// work, so implementations operate directly on the database.
type UserStore interface {
	// Create inserts user, whose HashedPassword is already set. A taken email,
	// compared case-insensitively, yields ErrEmailExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID and GetByEmail return ErrUserNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns up to limit users after skipping offset, oldest account
	// first. Returned users carry no password hash.
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)

	// Count returns the number of registered users.
	Count(ctx context.Context) (int, error)
}
