// Copyright (c) 2026 TaskFlow. All rights reserved.

package task

import (
	"context"
	"time"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/validate"
	"github.com/taskflowhq/taskflow/pkg/pointer"
	"github.com/taskflowhq/taskflow/pkg/uuidv7"
)

// Service implements the task CRUD use cases.
//
// Every operation takes the acting user's id as the ownership key; no task
// is ever visible to or mutable by a non-owner. Per-user isolation relies
// entirely on this filter, not on any concurrency primitive.
type Service struct {
	repository Repository
}

// NewService constructs a new task [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// List returns all tasks owned by the acting user, newest first.
// No pagination; the result set is unbounded.
func (service *Service) List(ctx context.Context, actorID string) ([]*Task, error) {
	return service.repository.ListByOwner(ctx, actorID)
}

// CreateInput holds the attributes accepted when creating a task.
type CreateInput struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
}

// Create validates and persists a new task owned by the acting user.
//
// # Business Rules
//   - Title is mandatory and non-empty.
//   - Omitted status defaults to "pending", omitted priority to "medium".
//     Defaults are a server invariant, not a client convenience: a record
//     can never be persisted without both fields set.
func (service *Service) Create(ctx context.Context, actorID string, input CreateInput) (*Task, error) {
	// ── 1. Validation ─────────────────────────────────────────────────────

	if input.Title == "" {
		return nil, validate.RequiredError("title", "Please add a title")
	}

	validator := &validate.Validator{}
	if err := validator.
		Custom("status", input.Status != "" && !input.Status.Valid(), "Unknown status").
		Custom("priority", input.Priority != "" && !input.Priority.Valid(), "Unknown priority").
		Err(); err != nil {
		return nil, err
	}

	// ── 2. Defaults ───────────────────────────────────────────────────────

	status := input.Status
	if status == "" {
		status = StatusPending
	}
	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	// ── 3. Entity Construction & Persistence ──────────────────────────────

	created := &Task{
		ID:          uuidv7.New(),
		UserID:      actorID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
	}

	if err := service.repository.Create(ctx, created); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateInput is a partial attribute set: nil fields are left untouched.
//
// Owner and id are not representable here at all — the payload can never
// reassign ownership.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	// ClearDueDate removes the due date; a nil DueDate alone means "unchanged".
	ClearDueDate bool
}

// Update applies a partial update to a task owned by the acting user.
//
// # Flow
//  1. Resolve the task by id → [apperr.NotFound] if absent.
//  2. Ownership check via [Task.OwnedBy], BEFORE any mutation is applied →
//     [apperr.Unauthorized] on mismatch, storage untouched.
//  3. Validate and apply the partial attribute set, persist, return the
//     resulting record.
//
// Concurrent updates to the same task are last-write-wins at the storage
// layer; there is no version or etag check.
func (service *Service) Update(ctx context.Context, actorID, taskID string, input UpdateInput) (*Task, error) {
	// ── 1. Resolution ─────────────────────────────────────────────────────

	existing, err := service.repository.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// ── 2. Ownership ──────────────────────────────────────────────────────

	if !existing.OwnedBy(actorID) {
		return nil, apperr.Unauthorized("User not authorized")
	}

	// ── 3. Validation ─────────────────────────────────────────────────────

	validator := &validate.Validator{}
	if err := validator.
		Custom("title", input.Title != nil && *input.Title == "", "Title must not be empty").
		Custom("status", input.Status != nil && !input.Status.Valid(), "Unknown status").
		Custom("priority", input.Priority != nil && !input.Priority.Valid(), "Unknown priority").
		Err(); err != nil {
		return nil, err
	}

	// ── 4. Partial Application ────────────────────────────────────────────

	existing.Title = pointer.Fallback(input.Title, existing.Title)
	existing.Description = pointer.Fallback(input.Description, existing.Description)
	existing.Status = pointer.Fallback(input.Status, existing.Status)
	existing.Priority = pointer.Fallback(input.Priority, existing.Priority)
	if input.DueDate != nil {
		existing.DueDate = input.DueDate
	} else if input.ClearDueDate {
		existing.DueDate = nil
	}

	// ── 5. Persistence ────────────────────────────────────────────────────

	if err := service.repository.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete permanently removes a task owned by the acting user and returns its id.
//
// Resolution and ownership checks mirror [Service.Update]; there is no
// soft-delete or recovery path.
func (service *Service) Delete(ctx context.Context, actorID, taskID string) (string, error) {
	existing, err := service.repository.FindByID(ctx, taskID)
	if err != nil {
		return "", err
	}

	if !existing.OwnedBy(actorID) {
		return "", apperr.Unauthorized("User not authorized")
	}

	if err := service.repository.Delete(ctx, taskID); err != nil {
		return "", err
	}

	return taskID, nil
}
