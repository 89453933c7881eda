package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped) by services.
//
// Error handling principles:
// 1. Hard failures wrap one of the sentinels below and are returned to the caller
// 2. Soft failures (cache invalidation, realtime push) are only logged
// 3. Callers use errors.Is to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrUnauthenticated indicates the request carries no acting user.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidInput indicates the request data failed validation.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistenceFailure indicates the durable store could not complete
	// the operation. Nothing was persisted.
	// API layer should map this to HTTP 500 Internal Server Error.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrCacheInvalidation marks a failed post-commit cache invalidation.
	// It is logged, never returned to callers.
	ErrCacheInvalidation = errors.New("cache invalidation failed")

	// ErrPushDelivery marks a failed post-commit realtime push.
	// It is logged, never returned to callers.
	ErrPushDelivery = errors.New("push delivery failed")

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists indicates registration with an email already in use.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ServiceError wraps errors from a service operation with context.
type ServiceError struct {
	// Service is the service that failed (e.g., "task", "user")
	Service string
	// Operation is the operation that failed (e.g., "create_task", "list_tasks")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError wraps err for a task service operation.
func NewTaskServiceError(operation, message string, err error) error {
	return newServiceError("task", operation, message, err)
}

// NewUserServiceError wraps err for a user service operation.
func NewUserServiceError(operation, message string, err error) error {
	return newServiceError("user", operation, message, err)
}

func newServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
