//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/phrazzld/taskflow-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openIntegrationDB connects to the test database and applies the embedded
// migrations through Migrate, the same path the server takes at startup.
func openIntegrationDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db := testdb.Open(t)
	require.NoError(t, Migrate(context.Background(), db.DB, "up", nil))
	return db
}

func createIntegrationUser(t *testing.T, db sqlx.ExtContext) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:             uuid.New(),
		Email:          uuid.NewString() + "@example.com",
		HashedPassword: "not-a-real-hash",
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, NewPostgresUserStore(db).Create(context.Background(), user))
	return user
}

func TestIntegration_UnitOfWorkAtomicity(t *testing.T) {
	ctx := context.Background()
	db := openIntegrationDB(t)
	user := createIntegrationUser(t, db)
	tasks := NewPostgresTaskStore(db)
	notifications := NewPostgresNotificationStore(db)

	injected := errors.New("injected failure")
	err := store.RunInUnitOfWork(ctx, NewTransactor(db), func(ctx context.Context, uow store.UnitOfWork) error {
		task, err := domain.NewTask(user.ID, "rolled back", "", nil, time.Now())
		require.NoError(t, err)
		require.NoError(t, uow.Tasks().Create(ctx, task))
		return injected
	})
	require.ErrorIs(t, err, injected)

	count, err := tasks.CountByOwner(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = store.RunInUnitOfWork(ctx, NewTransactor(db), func(ctx context.Context, uow store.UnitOfWork) error {
		return stageTaskAndNotification(ctx, uow, user.ID)
	})
	require.NoError(t, err)

	count, err = tasks.CountByOwner(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	items, err := notifications.ListByOwner(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Message, "Write the design doc")
}

func TestIntegration_DuplicateEmail(t *testing.T) {
	db := openIntegrationDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		user := createIntegrationUser(t, tx)

		dup := *user
		dup.ID = uuid.New()
		err := NewPostgresUserStore(tx).Create(context.Background(), &dup)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestIntegration_ListingOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	db := openIntegrationDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		user := createIntegrationUser(t, tx)
		tasks := NewPostgresTaskStore(tx)

		base := time.Now().UTC().Truncate(time.Second)
		for i := 0; i < 3; i++ {
			task, err := domain.NewTask(user.ID, fmt.Sprintf("task %d", i), "", nil, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, err)
			require.NoError(t, tasks.Create(ctx, task))
		}

		page, err := tasks.ListByOwner(ctx, user.ID, 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "task 2", page[0].Title, "newest first")
		assert.Equal(t, "task 1", page[1].Title)

		rest, err := tasks.ListByOwner(ctx, user.ID, 2, 2)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, "task 0", rest[0].Title)

		got, err := NewPostgresUserStore(tx).GetByEmail(ctx, strings.ToUpper(user.Email))
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})
}

func TestIntegration_UserDirectory(t *testing.T) {
	ctx := context.Background()
	db := openIntegrationDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		users := NewPostgresUserStore(tx)
		before, err := users.Count(ctx)
		require.NoError(t, err)

		created := createIntegrationUser(t, tx)

		after, err := users.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+1, after)

		all, err := users.List(ctx, after, 0)
		require.NoError(t, err)
		require.Len(t, all, after)
		var found bool
		for _, u := range all {
			assert.Empty(t, u.HashedPassword)
			found = found || u.ID == created.ID
		}
		assert.True(t, found)
	})
}
