package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds connection checks and migrations.
const TestTimeout = 10 * time.Second

// Environment variables consulted for the test database, in order.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvTestDBURL   = "TASKFLOW_TEST_DB_URL"
)

// MigrationsDir is the migrations directory relative to the project root.
var MigrationsDir = filepath.Join("internal", "platform", "postgres", "migrations")

// GetTestDatabaseURL returns the first non-empty of DATABASE_URL and
// TASKFLOW_TEST_DB_URL.
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvDatabaseURL, EnvTestDBURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Open connects to the test database and applies all migrations. The test
// is skipped when no database URL is configured.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skipf("%s not set - skipping integration test", EnvDatabaseURL)
	}

	db, err := sqlx.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	SetupSchema(t, db.DB)
	return db
}

// SetupSchema migrates db to the latest version using the SQL files under
// MigrationsDir.
func SetupSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	root, err := FindProjectRoot()
	require.NoError(t, err, "failed to find project root")

	dir := filepath.Join(root, MigrationsDir)
	require.DirExists(t, dir, "migrations directory does not exist")

	goose.SetBaseFS(os.DirFS(dir))
	defer goose.SetBaseFS(nil)
	goose.SetLogger(testGooseLogger{t: t})
	goose.SetTableName("schema_migrations")
	require.NoError(t, goose.SetDialect("postgres"))

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, goose.UpContext(ctx, db, "."), "failed to run migrations")
}

// WithTx runs fn inside a transaction that is rolled back afterwards, also
// when fn fails the test or panics.
func WithTx(t *testing.T, db *sqlx.DB, fn func(t *testing.T, tx *sqlx.Tx)) {
	t.Helper()

	tx, err := db.Beginx()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// FindProjectRoot walks up from the working directory to the directory
// holding go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

type testGooseLogger struct {
	t *testing.T
}

func (l testGooseLogger) Printf(format string, v ...interface{}) {
	l.t.Logf(format, v...)
}

func (l testGooseLogger) Fatalf(format string, v ...interface{}) {
	l.t.Fatalf(format, v...)
}
