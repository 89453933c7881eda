// Package testutils provides in-memory collaborators for tests of the
// service and API layers: a transactional store with failure injection,
// a cache and a notifier that record calls, and a capturing slog handler.
package testutils
