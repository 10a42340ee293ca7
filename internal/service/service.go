// Package service defines the backend-agnostic types and interfaces for task operations.
package service

import (
	"context"
	"errors"
)

// Errors every backend reports in a comparable form.
var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the session token is missing, expired or revoked.
	ErrUnauthorized = errors.New("token expired or revoked")

	// ErrTimeout is returned when a call exceeds its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrRejected is returned when the API refuses a request as invalid,
	// such as a registration for an email that already exists.
	ErrRejected = errors.New("request rejected")
)

// Service defines the interface for task backend operations.
// All network calls go through this interface.
// Commands and the dashboard never import the HTTP client directly.
type Service interface {
	// ListTasks returns the user's tasks in API order (newest first).
	// An empty Query lists everything.
	ListTasks(ctx context.Context, q Query) ([]Task, error)

	// CreateTask creates a task and returns the stored record.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask applies a partial update and returns the stored record.
	UpdateTask(ctx context.Context, id string, p TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// Stats returns the aggregate snapshot.
	Stats(ctx context.Context) (Stats, error)
}

// Authenticator defines the unauthenticated endpoints.
type Authenticator interface {
	// Login exchanges credentials for an access token.
	Login(ctx context.Context, c Credentials) (AuthResult, error)

	// Register creates an account and returns an access token for it.
	Register(ctx context.Context, r Registration) (AuthResult, error)

	// Health reports whether the API is reachable.
	Health(ctx context.Context) (Health, error)
}
