// Copyright (c) 2026 TaskFlow. All rights reserved.

package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/dberr"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new task record into the core.task table.
func (repository *PostgresRepository) Create(ctx context.Context, task *Task) error {
	const query = `
		INSERT INTO core.task (
			id, userid, title, description, status, priority, duedate, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		nullableText(task.Description),
		task.Status,
		task.Priority,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Task")
	}

	return nil
}

// FindByID retrieves a task record by its unique ID.
//
// # Returns
//
// Returns [*Task] if found, or [apperr.NotFound] if no record exists.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	const query = `
		SELECT id, userid, title, description, status, priority, duedate, createdat, updatedat
		FROM core.task
		WHERE id = $1`

	task := &Task{}
	var description sql.NullString

	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Task")
		}
		return nil, fmt.Errorf("postgres_task_repo_find_by_id_failed: %w", err)
	}

	task.Description = description.String

	return task, nil
}

// ListByOwner returns every task owned by the user, newest first.
//
// The ownership filter in the WHERE clause is the isolation boundary between
// users; there is no further locking.
func (repository *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*Task, error) {
	const query = `
		SELECT id, userid, title, description, status, priority, duedate, createdat, updatedat
		FROM core.task
		WHERE userid = $1
		ORDER BY createdat DESC`

	rows, err := repository.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Task")
	}
	defer rows.Close()

	tasks := make([]*Task, 0)
	for rows.Next() {
		task := &Task{}
		var description sql.NullString

		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&description,
			&task.Status,
			&task.Priority,
			&task.DueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "Task")
		}

		task.Description = description.String
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Task")
	}

	return tasks, nil
}

// Update persists the mutable attribute set of an existing task.
// Owner and ID are deliberately absent from the SET clause.
func (repository *PostgresRepository) Update(ctx context.Context, task *Task) error {
	const query = `
		UPDATE core.task
		SET title = $2, description = $3, status = $4, priority = $5, duedate = $6, updatedat = $7
		WHERE id = $1`

	task.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		nullableText(task.Description),
		task.Status,
		task.Priority,
		task.DueDate,
		task.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Task")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Task")
	}

	return nil
}

// Delete permanently removes a task record. There is no recovery path.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	const query = "DELETE FROM core.task WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "Task")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Task")
	}

	return nil
}

// nullableText maps an empty description to SQL NULL so optional text stays
// distinguishable from an explicit empty string in the schema.
func nullableText(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
