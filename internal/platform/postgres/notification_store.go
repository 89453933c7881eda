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

type notificationRow struct {
	ID        uuid.UUID `db:"id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

// PostgresNotificationStore implements store.NotificationStore.
type PostgresNotificationStore struct {
	db sqlx.ExtContext
}

// NewPostgresNotificationStore creates a notification store running its
// queries on db, which may be a *sqlx.DB or a *sqlx.Tx.
func NewPostgresNotificationStore(db sqlx.ExtContext) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, owner_id, message, created_at)
		VALUES ($1, $2, $3, $4)`,
		n.ID, n.OwnerID, n.Message, n.CreatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to insert notification",
			slog.String("notification_id", n.ID.String()),
			slog.String("owner_id", n.OwnerID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("notification", "create", "failed to insert notification", MapError(err))
	}
	return nil
}

// ListByOwner implements store.NotificationStore.ListByOwner
func (s *PostgresNotificationStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	limit, offset int,
) ([]*domain.Notification, error) {
	var rows []notificationRow
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT id, owner_id, message, created_at
		FROM notifications
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, MapError(err)
	}

	out := make([]*domain.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, &domain.Notification{
			ID:        r.ID,
			OwnerID:   r.OwnerID,
			Message:   r.Message,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// CountByOwner implements store.NotificationStore.CountByOwner
func (s *PostgresNotificationStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, s.db, &count,
		`SELECT COUNT(*) FROM notifications WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}
