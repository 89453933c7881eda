// Package api exposes the task, notification and account operations over
// HTTP. Handlers decode and validate requests, call the services with the
// authenticated user's ID, and map service errors to status codes.
package api
