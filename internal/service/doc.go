// Package service contains the application use cases. It orchestrates domain
// objects, the store interfaces from internal/store and the side channels
// (listing cache, realtime push) to fulfil API requests.
//
// The central use case is task creation: the task and its notification are
// staged in one unit of work and committed together; cache invalidation and
// the realtime push run afterwards as independent background jobs whose
// failures are logged and never reach the caller.
//
// Errors returned by services wrap the sentinels in errors.go and are matched
// with errors.Is. The API layer maps them to HTTP status codes.
package service
