package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Transactor opens units of work backed by database transactions.
type Transactor struct {
	db *sqlx.DB
}

// NewTransactor creates a Transactor over db.
func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

var _ store.Transactor = (*Transactor)(nil)

// Begin implements store.Transactor.Begin
// The transaction is bound to ctx; database/sql rolls it back if ctx is
// cancelled before Commit.
func (t *Transactor) Begin(ctx context.Context) (store.UnitOfWork, error) {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &unitOfWork{
		tx:            tx,
		tasks:         NewPostgresTaskStore(tx),
		notifications: NewPostgresNotificationStore(tx),
	}, nil
}

type unitOfWork struct {
	tx            *sqlx.Tx
	tasks         *PostgresTaskStore
	notifications *PostgresNotificationStore
}

func (u *unitOfWork) Tasks() store.TaskStore { return u.tasks }

func (u *unitOfWork) Notifications() store.NotificationStore { return u.notifications }

func (u *unitOfWork) Commit() error { return u.tx.Commit() }

// Rollback is a no-op once the transaction has finished.
func (u *unitOfWork) Rollback() error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
