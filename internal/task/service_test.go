// Copyright (c) 2026 TaskFlow. All rights reserved.

package task_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/task"
	"github.com/taskflowhq/taskflow/pkg/pointer"
)

// memoryRepository is an in-memory Repository for service tests.
type memoryRepository struct {
	mu    sync.Mutex
	tasks map[string]*task.Task
	seq   int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{tasks: make(map[string]*task.Task)}
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*task.Task, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if record, ok := repo.tasks[id]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, apperr.NotFound("Task")
}

func (repo *memoryRepository) ListByOwner(_ context.Context, userID string) ([]*task.Task, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	owned := make([]*task.Task, 0)
	for _, record := range repo.tasks {
		if record.UserID == userID {
			copied := *record
			owned = append(owned, &copied)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

func (repo *memoryRepository) Create(_ context.Context, record *task.Task) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	// Strictly increasing creation times so newest-first ordering is stable.
	repo.seq++
	record.CreatedAt = time.Unix(int64(repo.seq), 0)
	record.UpdatedAt = record.CreatedAt

	copied := *record
	repo.tasks[record.ID] = &copied
	return nil
}

func (repo *memoryRepository) Update(_ context.Context, record *task.Task) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.tasks[record.ID]; !ok {
		return apperr.NotFound("Task")
	}
	record.UpdatedAt = time.Now()
	copied := *record
	repo.tasks[record.ID] = &copied
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.tasks[id]; !ok {
		return apperr.NotFound("Task")
	}
	delete(repo.tasks, id)
	return nil
}

/*
TestService_Create verifies creation with explicit attributes and the
server-side defaulting of status and priority.
*/
func TestService_Create(t *testing.T) {
	service := task.NewService(newMemoryRepository())
	ctx := context.Background()

	t.Run("explicit_attributes", func(t *testing.T) {
		created, err := service.Create(ctx, "user-1", task.CreateInput{
			Title:       "Write report",
			Description: "Quarterly numbers",
			Status:      task.StatusInProgress,
			Priority:    task.PriorityHigh,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "user-1", created.UserID)
		assert.Equal(t, task.StatusInProgress, created.Status)
		assert.Equal(t, task.PriorityHigh, created.Priority)
	})

	t.Run("defaults_applied", func(t *testing.T) {
		created, err := service.Create(ctx, "user-1", task.CreateInput{Title: "Minimal"})
		require.NoError(t, err)
		assert.Equal(t, task.StatusPending, created.Status)
		assert.Equal(t, task.PriorityMedium, created.Priority)
		assert.Nil(t, created.DueDate)
	})

	t.Run("missing_title", func(t *testing.T) {
		_, err := service.Create(ctx, "user-1", task.CreateInput{})
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, 400, ae.HTTPStatus)
		assert.Equal(t, "Please add a title", ae.Message)
		assert.Equal(t, "title", ae.Details[0].Field)
	})

	t.Run("unknown_status", func(t *testing.T) {
		_, err := service.Create(ctx, "user-1", task.CreateInput{
			Title: "Bad status", Status: task.Status("archived"),
		})
		require.Error(t, err)
		assert.Equal(t, 400, apperr.As(err).HTTPStatus)
	})
}

/*
TestService_List verifies per-user isolation and newest-first ordering.
*/
func TestService_List(t *testing.T) {
	service := task.NewService(newMemoryRepository())
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := service.Create(ctx, "user-1", task.CreateInput{Title: title})
		require.NoError(t, err)
	}
	_, err := service.Create(ctx, "user-2", task.CreateInput{Title: "other user"})
	require.NoError(t, err)

	owned, err := service.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, owned, 3)

	// Newest first.
	assert.Equal(t, "third", owned[0].Title)
	assert.Equal(t, "second", owned[1].Title)
	assert.Equal(t, "first", owned[2].Title)

	// The other user's list holds only their own task.
	others, err := service.List(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "other user", others[0].Title)
}

/*
TestService_Update verifies partial updates: touched attributes change,
untouched ones survive, and the due date can be set and cleared.
*/
func TestService_Update(t *testing.T) {
	service := task.NewService(newMemoryRepository())
	ctx := context.Background()

	dueDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	created, err := service.Create(ctx, "user-1", task.CreateInput{
		Title:       "Original title",
		Description: "Original description",
		DueDate:     &dueDate,
	})
	require.NoError(t, err)

	t.Run("partial_fields", func(t *testing.T) {
		status := task.StatusCompleted
		updated, err := service.Update(ctx, "user-1", created.ID, task.UpdateInput{
			Status: &status,
		})
		require.NoError(t, err)
		assert.Equal(t, task.StatusCompleted, updated.Status)
		assert.Equal(t, "Original title", updated.Title)
		assert.Equal(t, "Original description", updated.Description)
		require.NotNil(t, updated.DueDate)
	})

	t.Run("clear_due_date", func(t *testing.T) {
		updated, err := service.Update(ctx, "user-1", created.ID, task.UpdateInput{
			ClearDueDate: true,
		})
		require.NoError(t, err)
		assert.Nil(t, updated.DueDate)
	})

	t.Run("empty_title_rejected", func(t *testing.T) {
		_, err := service.Update(ctx, "user-1", created.ID, task.UpdateInput{
			Title: pointer.To(""),
		})
		require.Error(t, err)
		assert.Equal(t, 400, apperr.As(err).HTTPStatus)
	})

	t.Run("unknown_task", func(t *testing.T) {
		_, err := service.Update(ctx, "user-1", "missing-id", task.UpdateInput{})
		assert.True(t, apperr.IsNotFound(err))
	})
}

/*
TestService_Update_OwnershipEnforced verifies that a non-owner cannot mutate a
task: the call fails with 401 and storage is untouched.
*/
func TestService_Update_OwnershipEnforced(t *testing.T) {
	service := task.NewService(newMemoryRepository())
	ctx := context.Background()

	created, err := service.Create(ctx, "owner", task.CreateInput{Title: "Private"})
	require.NoError(t, err)

	_, err = service.Update(ctx, "intruder", created.ID, task.UpdateInput{
		Title: pointer.To("Hijacked"),
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 401, ae.HTTPStatus)
	assert.Equal(t, "User not authorized", ae.Message)

	// Record unchanged.
	owned, err := service.List(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Private", owned[0].Title)
}

/*
TestService_Delete verifies owner deletion, the returned id, and that
non-owners and unknown ids are rejected.
*/
func TestService_Delete(t *testing.T) {
	service := task.NewService(newMemoryRepository())
	ctx := context.Background()

	created, err := service.Create(ctx, "owner", task.CreateInput{Title: "Disposable"})
	require.NoError(t, err)

	t.Run("non_owner_rejected", func(t *testing.T) {
		_, err := service.Delete(ctx, "intruder", created.ID)
		require.Error(t, err)
		assert.Equal(t, 401, apperr.As(err).HTTPStatus)
	})

	t.Run("owner_deletes", func(t *testing.T) {
		deletedID, err := service.Delete(ctx, "owner", created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, deletedID)

		owned, err := service.List(ctx, "owner")
		require.NoError(t, err)
		assert.Empty(t, owned)
	})

	t.Run("already_gone", func(t *testing.T) {
		_, err := service.Delete(ctx, "owner", created.ID)
		assert.True(t, apperr.IsNotFound(err))
	})
}
