// Copyright (c) 2026 TaskFlow. All rights reserved.

package task

import "context"

// Repository defines the data access contract for task records.
//
// # Implementations
//
// The canonical implementation is PostgreSQL (store_postgres.go). Tests use
// in-memory fakes.
type Repository interface {
	// FindByID returns the task with the given ID regardless of owner.
	// Ownership is the service's concern, not the store's.
	//
	// Returns [apperr.NotFound] if the task does not exist.
	FindByID(ctx context.Context, id string) (*Task, error)

	// ListByOwner returns every task owned by the user, newest first
	// (creation time descending). The result set is unbounded.
	ListByOwner(ctx context.Context, userID string) ([]*Task, error)

	// Create persists a brand-new task record.
	Create(ctx context.Context, task *Task) error

	// Update persists the full mutable attribute set of an existing task.
	// Owner and ID are never written.
	Update(ctx context.Context, task *Task) error

	// Delete permanently removes the record.
	//
	// Returns [apperr.NotFound] if the task does not exist.
	Delete(ctx context.Context, id string) error
}
