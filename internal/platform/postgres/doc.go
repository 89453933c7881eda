// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces defined in internal/store. Stores are built on sqlx and accept
// either a *sqlx.DB or a *sqlx.Tx, so the same code serves both standalone
// queries and units of work. The schema lives in embedded goose migrations.
package postgres
