package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// taskRow mirrors the tasks table.
type taskRow struct {
	ID          uuid.UUID  `db:"id"`
	OwnerID     uuid.UUID  `db:"owner_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	DueDate     *time.Time `db:"due_date"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
}

func (r taskRow) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Status:      domain.TaskStatus(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db sqlx.ExtContext
}

// NewPostgresTaskStore creates a task store running its queries on db,
// which may be a *sqlx.DB or a *sqlx.Tx.
func NewPostgresTaskStore(db sqlx.ExtContext) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, due_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.DueDate,
		string(task.Status),
		task.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert task",
			slog.String("task_id", task.ID.String()),
			slog.String("owner_id", task.OwnerID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	log.Debug("task staged", slog.String("task_id", task.ID.String()))
	return nil
}

// ListByOwner implements store.TaskStore.ListByOwner
func (s *PostgresTaskStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	limit, offset int,
) ([]*domain.Task, error) {
	var rows []taskRow
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT id, owner_id, title, description, due_date, status, created_at
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list tasks",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// CountByOwner implements store.TaskStore.CountByOwner
func (s *PostgresTaskStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, s.db, &count,
		`SELECT COUNT(*) FROM tasks WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}
