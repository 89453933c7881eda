package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// MemoryStore is an in-memory durable store with unit-of-work semantics.
// Writes staged through a unit of work are only visible after Commit.
// The Fail* fields inject errors into the matching operation.
type MemoryStore struct {
	mu            sync.Mutex
	tasks         []*domain.Task
	notifications []*domain.Notification
	users         map[uuid.UUID]*domain.User

	FailBegin              error
	FailTaskCreate         error
	FailNotificationCreate error
	FailCommit             error
	FailList               error

	begins    int
	commits   int
	rollbacks int
}

var _ store.Transactor = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]*domain.User)}
}

// Begin implements store.Transactor.
func (m *MemoryStore) Begin(ctx context.Context) (store.UnitOfWork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailBegin != nil {
		return nil, m.FailBegin
	}
	m.begins++
	return &memoryUnitOfWork{store: m, ctx: ctx}, nil
}

// Tasks returns a TaskStore over committed tasks. Create writes immediately.
func (m *MemoryStore) Tasks() store.TaskStore { return committedTasks{m} }

// Notifications returns a NotificationStore over committed notifications.
func (m *MemoryStore) Notifications() store.NotificationStore { return committedNotifications{m} }

// Users returns a UserStore.
func (m *MemoryStore) Users() store.UserStore { return memoryUsers{m} }

// CommittedTasks returns a snapshot of every committed task.
func (m *MemoryStore) CommittedTasks() []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Task(nil), m.tasks...)
}

// CommittedNotifications returns a snapshot of every committed notification.
func (m *MemoryStore) CommittedNotifications() []*domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Notification(nil), m.notifications...)
}

// Counts returns how many units of work were begun, committed and rolled back.
func (m *MemoryStore) Counts() (begins, commits, rollbacks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.begins, m.commits, m.rollbacks
}

type memoryUnitOfWork struct {
	store         *MemoryStore
	ctx           context.Context
	tasks         []*domain.Task
	notifications []*domain.Notification
	done          bool
}

func (u *memoryUnitOfWork) Tasks() store.TaskStore { return stagedTasks{u} }

func (u *memoryUnitOfWork) Notifications() store.NotificationStore {
	return stagedNotifications{u}
}

func (u *memoryUnitOfWork) Commit() error {
	m := u.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.done {
		return store.ErrTransactionFailed
	}
	if err := u.ctx.Err(); err != nil {
		return err
	}
	if m.FailCommit != nil {
		return m.FailCommit
	}

	m.tasks = append(m.tasks, u.tasks...)
	m.notifications = append(m.notifications, u.notifications...)
	m.commits++
	u.done = true
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	m := u.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.done {
		return nil
	}
	u.tasks, u.notifications = nil, nil
	m.rollbacks++
	u.done = true
	return nil
}

type stagedTasks struct{ u *memoryUnitOfWork }

func (s stagedTasks) Create(ctx context.Context, task *domain.Task) error {
	if err := s.u.store.checkTaskCreate(ctx, task); err != nil {
		return err
	}
	s.u.tasks = append(s.u.tasks, task)
	return nil
}

func (s stagedTasks) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Task, error) {
	all := append(s.u.store.CommittedTasks(), s.u.tasks...)
	return pageTasks(all, ownerID, limit, offset), nil
}

func (s stagedTasks) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	all := append(s.u.store.CommittedTasks(), s.u.tasks...)
	return len(pageTasks(all, ownerID, len(all), 0)), nil
}

type stagedNotifications struct{ u *memoryUnitOfWork }

func (s stagedNotifications) Create(ctx context.Context, n *domain.Notification) error {
	if err := s.u.store.checkNotificationCreate(ctx, n); err != nil {
		return err
	}
	s.u.notifications = append(s.u.notifications, n)
	return nil
}

func (s stagedNotifications) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	all := append(s.u.store.CommittedNotifications(), s.u.notifications...)
	return pageNotifications(all, ownerID, limit, offset), nil
}

func (s stagedNotifications) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	all := append(s.u.store.CommittedNotifications(), s.u.notifications...)
	return len(pageNotifications(all, ownerID, len(all), 0)), nil
}

type committedTasks struct{ m *MemoryStore }

func (c committedTasks) Create(ctx context.Context, task *domain.Task) error {
	if err := c.m.checkTaskCreate(ctx, task); err != nil {
		return err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	c.m.tasks = append(c.m.tasks, task)
	return nil
}

func (c committedTasks) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Task, error) {
	if err := c.m.listErr(); err != nil {
		return nil, err
	}
	return pageTasks(c.m.CommittedTasks(), ownerID, limit, offset), nil
}

func (c committedTasks) CountByOwner(_ context.Context, ownerID uuid.UUID) (int, error) {
	if err := c.m.listErr(); err != nil {
		return 0, err
	}
	all := c.m.CommittedTasks()
	return len(pageTasks(all, ownerID, len(all), 0)), nil
}

type committedNotifications struct{ m *MemoryStore }

func (c committedNotifications) Create(ctx context.Context, n *domain.Notification) error {
	if err := c.m.checkNotificationCreate(ctx, n); err != nil {
		return err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	c.m.notifications = append(c.m.notifications, n)
	return nil
}

func (c committedNotifications) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	if err := c.m.listErr(); err != nil {
		return nil, err
	}
	return pageNotifications(c.m.CommittedNotifications(), ownerID, limit, offset), nil
}

func (c committedNotifications) CountByOwner(_ context.Context, ownerID uuid.UUID) (int, error) {
	if err := c.m.listErr(); err != nil {
		return 0, err
	}
	all := c.m.CommittedNotifications()
	return len(pageNotifications(all, ownerID, len(all), 0)), nil
}

type memoryUsers struct{ m *MemoryStore }

func (s memoryUsers) Create(_ context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return store.ErrInvalidEntity
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrEmailExists
		}
	}
	stored := *user
	stored.Password = ""
	s.m.users[user.ID] = &stored
	return nil
}

func (s memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s memoryUsers) List(_ context.Context, limit, offset int) ([]*domain.User, error) {
	if err := s.m.listErr(); err != nil {
		return nil, err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	all := make([]*domain.User, 0, len(s.m.users))
	for _, u := range s.m.users {
		cp := *u
		cp.HashedPassword = ""
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return window(all, limit, offset), nil
}

func (s memoryUsers) Count(_ context.Context) (int, error) {
	if err := s.m.listErr(); err != nil {
		return 0, err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return len(s.m.users), nil
}

func (m *MemoryStore) checkTaskCreate(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FailTaskCreate
}

func (m *MemoryStore) checkNotificationCreate(ctx context.Context, n *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FailNotificationCreate
}

func (m *MemoryStore) listErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FailList
}

func pageTasks(all []*domain.Task, ownerID uuid.UUID, limit, offset int) []*domain.Task {
	owned := make([]*domain.Task, 0)
	for _, t := range all {
		if t.OwnerID == ownerID {
			owned = append(owned, t)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return window(owned, limit, offset)
}

func pageNotifications(all []*domain.Notification, ownerID uuid.UUID, limit, offset int) []*domain.Notification {
	owned := make([]*domain.Notification, 0)
	for _, n := range all {
		if n.OwnerID == ownerID {
			owned = append(owned, n)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return window(owned, limit, offset)
}

func window[T any](items []T, limit, offset int) []T {
	if offset < 0 || offset >= len(items) {
		return items[:0]
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
