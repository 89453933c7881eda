package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/background"
	"github.com/phrazzld/taskflow-api/internal/cache"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Background job names, used in logs.
const (
	jobCacheInvalidation = "cache_invalidation"
	jobRealtimePush      = "realtime_push"
)

// Dispatcher schedules post-commit background jobs.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, job background.Job) bool
}

// TaskService provides task and notification operations for a single user.
type TaskService interface {
	// CreateTask durably creates a task and its notification for ownerID,
	// then invalidates the owner's cached listings and pushes the
	// notification to live sessions in the background.
	// Returns errors wrapping ErrUnauthenticated, ErrInvalidInput or
	// ErrPersistenceFailure. Background failures are never returned.
	CreateTask(
		ctx context.Context,
		ownerID uuid.UUID,
		title, description string,
		dueDate *time.Time,
	) (uuid.UUID, error)

	// ListTasks returns a page of ownerID's tasks, newest first, served from
	// the listing cache when possible.
	ListTasks(ctx context.Context, ownerID uuid.UUID, page, pageSize int) (*Page[*domain.Task], error)

	// ListNotifications returns a page of ownerID's notification history.
	ListNotifications(
		ctx context.Context,
		ownerID uuid.UUID,
		page, pageSize int,
	) (*Page[*domain.Notification], error)
}

// TaskServiceDeps holds the collaborators of the task service.
type TaskServiceDeps struct {
	Transactor    store.Transactor
	Tasks         store.TaskStore
	Notifications store.NotificationStore
	Cache         cache.Gateway
	Notifier      realtime.Notifier
	Dispatcher    Dispatcher
	ListingTTL    time.Duration
	Logger        *slog.Logger
}

type taskServiceImpl struct {
	transactor    store.Transactor
	tasks         store.TaskStore
	notifications store.NotificationStore
	cache         cache.Gateway
	notifier      realtime.Notifier
	dispatcher    Dispatcher
	listingTTL    time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(deps TaskServiceDeps) (TaskService, error) {
	required := []struct {
		name  string
		value any
	}{
		{"transactor", deps.Transactor},
		{"tasks", deps.Tasks},
		{"notifications", deps.Notifications},
		{"cache", deps.Cache},
		{"notifier", deps.Notifier},
		{"dispatcher", deps.Dispatcher},
	}
	for _, r := range required {
		if r.value == nil {
			return nil, &ServiceError{
				Service:   "task",
				Operation: "create_service",
				Message:   r.name + " cannot be nil",
			}
		}
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	ttl := deps.ListingTTL
	if ttl <= 0 {
		ttl = defaultListingTTL
	}

	return &taskServiceImpl{
		transactor:    deps.Transactor,
		tasks:         deps.Tasks,
		notifications: deps.Notifications,
		cache:         deps.Cache,
		notifier:      deps.Notifier,
		dispatcher:    deps.Dispatcher,
		listingTTL:    ttl,
		logger:        log.With("component", "task_service"),
		now:           time.Now,
	}, nil
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	title, description string,
	dueDate *time.Time,
) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("owner_id", ownerID.String()))

	if ownerID == uuid.Nil {
		return uuid.Nil, NewTaskServiceError("create_task", "no acting user", ErrUnauthenticated)
	}

	now := s.now()
	task, err := domain.NewTask(ownerID, title, description, dueDate, now)
	if err != nil {
		log.Debug("rejected task input", slog.String("error", err.Error()))
		return uuid.Nil, NewTaskServiceError("create_task", "invalid task",
			fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	var notification *domain.Notification
	err = store.RunInUnitOfWork(ctx, s.transactor, func(ctx context.Context, uow store.UnitOfWork) error {
		if err := uow.Tasks().Create(ctx, task); err != nil {
			return fmt.Errorf("stage task: %w", err)
		}

		n, err := domain.NewNotification(ownerID, domain.TaskCreatedMessage(task.Title), now)
		if err != nil {
			return fmt.Errorf("build notification: %w", err)
		}
		if err := uow.Notifications().Create(ctx, n); err != nil {
			return fmt.Errorf("stage notification: %w", err)
		}
		notification = n
		return nil
	})
	if err != nil {
		log.Error("failed to persist task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return uuid.Nil, NewTaskServiceError("create_task", "failed to persist task",
			fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("notification_id", notification.ID.String()))

	s.dispatchAfterCommit(ctx, ownerID, notification.Message)

	return task.ID, nil
}

// dispatchAfterCommit schedules the best-effort tail of task creation. The
// two jobs are independent: one failing or being dropped does not affect the
// other.
func (s *taskServiceImpl) dispatchAfterCommit(ctx context.Context, ownerID uuid.UUID, message string) {
	s.dispatcher.Dispatch(ctx, jobCacheInvalidation, func(ctx context.Context) error {
		removed, err := s.cache.RemoveByOwner(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("%w: owner %s: %w", ErrCacheInvalidation, ownerID, err)
		}
		logger.FromContextOrDefault(ctx, s.logger).Debug("invalidated cached listings",
			slog.String("owner_id", ownerID.String()),
			slog.Int("removed", removed))
		return nil
	})

	s.dispatcher.Dispatch(ctx, jobRealtimePush, func(ctx context.Context) error {
		if err := s.notifier.SendNotification(ctx, ownerID, message); err != nil {
			return fmt.Errorf("%w: owner %s: %w", ErrPushDelivery, ownerID, err)
		}
		return nil
	})
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	page, pageSize int,
) (*Page[*domain.Task], error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("owner_id", ownerID.String()))

	if ownerID == uuid.Nil {
		return nil, NewTaskServiceError("list_tasks", "no acting user", ErrUnauthenticated)
	}
	page, pageSize, err := NormalizePage(page, pageSize)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "invalid page", err)
	}
	key := cache.ListingKey(ownerID, page, pageSize)

	if cached, ok := cachedPage[*domain.Task](ctx, s.cache, log, key); ok {
		return cached, nil
	}

	tasks, err := s.tasks.ListByOwner(ctx, ownerID, pageSize, offset(page, pageSize))
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list_tasks", "failed to load tasks",
			fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
	}
	total, err := s.tasks.CountByOwner(ctx, ownerID)
	if err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list_tasks", "failed to count tasks",
			fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
	}

	result := newPage(tasks, page, pageSize, total)
	storePage(ctx, s.cache, log, key, result, s.listingTTL)
	return result, nil
}

// ListNotifications implements TaskService.
func (s *taskServiceImpl) ListNotifications(
	ctx context.Context,
	ownerID uuid.UUID,
	page, pageSize int,
) (*Page[*domain.Notification], error) {
	if ownerID == uuid.Nil {
		return nil, NewTaskServiceError("list_notifications", "no acting user", ErrUnauthenticated)
	}
	page, pageSize, err := NormalizePage(page, pageSize)
	if err != nil {
		return nil, NewTaskServiceError("list_notifications", "invalid page", err)
	}

	items, err := s.notifications.ListByOwner(ctx, ownerID, pageSize, offset(page, pageSize))
	if err == nil {
		var total int
		total, err = s.notifications.CountByOwner(ctx, ownerID)
		if err == nil {
			return newPage(items, page, pageSize, total), nil
		}
	}

	logger.FromContextOrDefault(ctx, s.logger).Error("failed to list notifications",
		slog.String("owner_id", ownerID.String()),
		slog.String("error", err.Error()))
	return nil, NewTaskServiceError("list_notifications", "failed to load notifications",
		fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
}
