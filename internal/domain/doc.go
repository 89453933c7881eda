// Package domain contains the core business entities of the task tracker:
// tasks, the notifications raised when tasks are created, and the users who
// own both. Entities validate themselves and have no knowledge of storage,
// caching or transport.
package domain
