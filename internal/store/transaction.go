package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// UnitOfWorkFn is a function that stages writes within a unit of work.
// The unit of work is committed if the function returns nil, or rolled back if
// it returns an error.
type UnitOfWorkFn func(ctx context.Context, uow UnitOfWork) error

// RunInUnitOfWork executes fn within a new unit of work opened on t.
// If fn returns an error or panics, the unit of work is rolled back and nothing
// staged by fn becomes durable. Begin and commit failures are wrapped with
// ErrTransactionFailed; errors returned by fn are returned unchanged.
func RunInUnitOfWork(ctx context.Context, t Transactor, fn UnitOfWorkFn) error {
	log := logger.FromContext(ctx)

	uow, err := t.Begin(ctx)
	if err != nil {
		log.Error("failed to begin unit of work",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := uow.Rollback(); rbErr != nil {
				log.Error("failed to roll back unit of work after panic",
					slog.String("error", rbErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back unit of work after panic",
					slog.Any("panic", p))
			}
			// ALLOW-PANIC: propagating caught panic from unit of work
			panic(p)
		}
	}()

	if err := fn(ctx, uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.Error("failed to roll back unit of work",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back unit of work: %v (original error: %w)",
				rbErr,
				err,
			)
		}
		log.Debug("rolled back unit of work due to error",
			slog.String("error", err.Error()))
		return err
	}

	if err := uow.Commit(); err != nil {
		log.Error("failed to commit unit of work",
			slog.String("error", err.Error()))
		// Release the connection; the driver has usually done so already.
		_ = uow.Rollback()
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}

	log.Debug("unit of work committed successfully")
	return nil
}
