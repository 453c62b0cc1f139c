// Copyright (c) 2026 TaskFlow. All rights reserved.

package client

import (
	"context"
	"slices"
	"sync"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/sec"
	"github.com/taskflowhq/taskflow/internal/task"
)

// AuthState is the client-side authentication lifecycle.
type AuthState string

const (
	// AuthLoading is the initial state, before the stored session is checked.
	AuthLoading AuthState = "loading"

	// AuthAuthenticated means a live session exists and an identity is loaded.
	AuthAuthenticated AuthState = "authenticated"

	// AuthAnonymous means no session exists (or the stored one was rejected).
	AuthAnonymous AuthState = "anonymous"
)

// Store holds the client application state: who is signed in and the loaded
// task list.
//
// # State Discipline
//
// Mutations happen only after the server confirms the corresponding
// operation; a failed API call leaves the local state untouched. The one
// exception is Logout, which always clears the local identity even if the
// server call failed, since the user's intent to sign out must win.
type Store struct {
	client *Client

	mu        sync.RWMutex
	authState AuthState
	identity  *sec.Identity
	tasks     []*task.Task
}

// NewStore wraps a Client in a state store. The store starts in AuthLoading
// until [Store.Init] resolves the stored session.
func NewStore(client *Client) *Store {
	return &Store{
		client:    client,
		authState: AuthLoading,
		tasks:     make([]*task.Task, 0),
	}
}

// AuthStatus returns the current authentication state.
func (store *Store) AuthStatus() AuthState {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.authState
}

// Identity returns the signed-in user, or nil when anonymous or loading.
func (store *Store) Identity() *sec.Identity {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.identity
}

// Tasks returns a snapshot of the loaded task list, newest first.
func (store *Store) Tasks() []*task.Task {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return slices.Clone(store.tasks)
}

// # Session Lifecycle

// Init resolves the stored session (if any) by fetching the profile.
//
// A 401 is the normal "no session" answer and resolves to AuthAnonymous;
// any other failure also resolves to AuthAnonymous but is returned so the
// caller can surface connectivity problems.
func (store *Store) Init(ctx context.Context) error {
	identity, err := store.client.Profile(ctx)
	if err != nil {
		store.setAnonymous()
		if ae := apperr.As(err); ae != nil && ae.HTTPStatus == 401 {
			return nil
		}
		return err
	}

	store.setAuthenticated(identity)
	return nil
}

// Login authenticates with password credentials and, on success, transitions
// to AuthAuthenticated.
func (store *Store) Login(ctx context.Context, email, password string) error {
	identity, err := store.client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	store.setAuthenticated(identity)
	return nil
}

// GoogleLogin authenticates with a federated identity, like Login.
func (store *Store) GoogleLogin(ctx context.Context, input GoogleInput) error {
	identity, err := store.client.GoogleLogin(ctx, input)
	if err != nil {
		return err
	}

	store.setAuthenticated(identity)
	return nil
}

// Logout clears the session. Local state is cleared unconditionally: even if
// the server call fails, the user ends up signed out on this client.
func (store *Store) Logout(ctx context.Context) error {
	err := store.client.Logout(ctx)
	store.setAnonymous()
	return err
}

// # Task State

// LoadTasks fetches the session user's tasks and replaces the local list.
func (store *Store) LoadTasks(ctx context.Context) error {
	tasks, err := store.client.ListTasks(ctx)
	if err != nil {
		return err
	}

	store.mu.Lock()
	store.tasks = tasks
	store.mu.Unlock()
	return nil
}

// CreateTask creates a task on the server, then prepends the confirmed record
// to the local list (the list is ordered newest first).
func (store *Store) CreateTask(ctx context.Context, input TaskInput) (*task.Task, error) {
	created, err := store.client.CreateTask(ctx, input)
	if err != nil {
		return nil, err
	}

	store.mu.Lock()
	store.tasks = append([]*task.Task{created}, store.tasks...)
	store.mu.Unlock()
	return created, nil
}

// UpdateTask updates a task on the server, then swaps the confirmed record
// into the local list in place.
func (store *Store) UpdateTask(ctx context.Context, taskID string, input TaskUpdate) (*task.Task, error) {
	updated, err := store.client.UpdateTask(ctx, taskID, input)
	if err != nil {
		return nil, err
	}

	store.mu.Lock()
	for i, existing := range store.tasks {
		if existing.ID == updated.ID {
			store.tasks[i] = updated
			break
		}
	}
	store.mu.Unlock()
	return updated, nil
}

// DeleteTask deletes a task on the server, then drops it from the local list.
func (store *Store) DeleteTask(ctx context.Context, taskID string) error {
	deletedID, err := store.client.DeleteTask(ctx, taskID)
	if err != nil {
		return err
	}

	store.mu.Lock()
	store.tasks = slices.DeleteFunc(store.tasks, func(existing *task.Task) bool {
		return existing.ID == deletedID
	})
	store.mu.Unlock()
	return nil
}

// # State Transitions

func (store *Store) setAuthenticated(identity *sec.Identity) {
	store.mu.Lock()
	store.authState = AuthAuthenticated
	store.identity = identity
	store.mu.Unlock()
}

// setAnonymous drops the identity and the task list; cached tasks belong to
// the session that just ended.
func (store *Store) setAnonymous() {
	store.mu.Lock()
	store.authState = AuthAnonymous
	store.identity = nil
	store.tasks = make([]*task.Task, 0)
	store.mu.Unlock()
}
