package store

import "context"

// UnitOfWork groups the stores bound to a single transaction.
// Writes made through Tasks() and Notifications() are staged and only become
// durable when Commit succeeds. Rollback discards them and is safe to call
// after Commit.
type UnitOfWork interface {
	// Tasks returns a TaskStore bound to this unit of work.
	Tasks() TaskStore

	// Notifications returns a NotificationStore bound to this unit of work.
	Notifications() NotificationStore

	// Commit makes all staged writes durable atomically.
	Commit() error

	// Rollback discards all staged writes.
	Rollback() error
}

// Transactor opens units of work against the durable store.
type Transactor interface {
	// Begin starts a new unit of work. The unit of work is tied to ctx:
	// if ctx is cancelled before Commit, the staged writes are discarded.
	Begin(ctx context.Context) (UnitOfWork, error)
}
