// Copyright (c) 2026 TaskFlow. All rights reserved.

// Package task implements the task-tracking domain: per-user task records and
// the CRUD service enforcing ownership on every read and mutation.
package task

import "time"

// Status enumerates the lifecycle states of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority enumerates the urgency levels of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single tracked item owned by exactly one user.
//
// # Rules
//   - Title is never empty.
//   - UserID is set at creation and never reassigned.
//   - Deletion is permanent; there is no soft-delete or recovery path.
type Task struct {
	ID          string     `json:"_id"`
	UserID      string     `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// OwnedBy is the single authorization predicate for task access.
//
// Every mutation and filtered read in the service goes through this check;
// it is deliberately factored once rather than re-implemented per operation.
func (t *Task) OwnedBy(userID string) bool {
	return t.UserID == userID
}
