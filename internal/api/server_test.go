// Copyright (c) 2026 TaskFlow. All rights reserved.

package api_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/auth"
	"github.com/taskflowhq/taskflow/internal/client"
	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/config"
	"github.com/taskflowhq/taskflow/internal/platform/constants"
	"github.com/taskflowhq/taskflow/internal/platform/sec"
	"github.com/taskflowhq/taskflow/internal/task"
	"github.com/taskflowhq/taskflow/pkg/pointer"
)

// # In-Memory Backends

type stubUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (s *stubUsers) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return apperr.Conflict("User already exists")
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *stubUsers) AttachGoogleID(_ context.Context, userID, googleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.GoogleID = googleID
	return nil
}

type stubCache struct {
	mu      sync.Mutex
	entries map[string]*sec.Identity
}

func (s *stubCache) Get(_ context.Context, userID string) (*sec.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity, ok := s.entries[userID]; ok {
		return identity, nil
	}
	return nil, apperr.NotFound("User")
}

func (s *stubCache) Set(_ context.Context, identity *sec.Identity, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[identity.ID] = identity
	return nil
}

func (s *stubCache) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

type stubTasks struct {
	mu    sync.Mutex
	tasks map[string]*task.Task
	seq   int
}

func (s *stubTasks) FindByID(_ context.Context, id string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.tasks[id]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, apperr.NotFound("Task")
}

func (s *stubTasks) ListByOwner(_ context.Context, userID string) ([]*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := make([]*task.Task, 0)
	for _, record := range s.tasks {
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

func (s *stubTasks) Create(_ context.Context, record *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	record.CreatedAt = time.Unix(int64(s.seq), 0)
	record.UpdatedAt = record.CreatedAt
	copied := *record
	s.tasks[record.ID] = &copied
	return nil
}

func (s *stubTasks) Update(_ context.Context, record *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[record.ID]; !ok {
		return apperr.NotFound("Task")
	}
	copied := *record
	s.tasks[record.ID] = &copied
	return nil
}

func (s *stubTasks) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return apperr.NotFound("Task")
	}
	delete(s.tasks, id)
	return nil
}

// newTestServer boots the full router on in-memory backends and returns a
// running httptest server.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := slog.Default()
	cfg := &config.Config{
		ServerPort:   "0",
		Environment:  "development",
		ClientOrigin: "http://localhost:5173",
	}

	tokenService, err := sec.NewTokenService("test-session-secret", constants.SessionIssuer)
	require.NoError(t, err)

	authService := auth.NewService(
		&stubUsers{users: make(map[string]*auth.User)},
		&stubCache{entries: make(map[string]*sec.Identity)},
		tokenService,
		log,
	)
	authHandler := auth.NewHandler(authService, auth.NewCookiePolicy(false))

	taskHandler := task.NewHandler(task.NewService(&stubTasks{tasks: make(map[string]*task.Task)}))

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{}, log)

	server := api.NewServer(cfg, log, tokenService, authService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Task:      taskHandler,
	})

	testServer := httptest.NewServer(server.Router())
	t.Cleanup(testServer.Close)
	return testServer
}

/*
TestAPI_Banner verifies the unauthenticated root endpoint used by uptime
monitors and the keep-alive pinger.
*/
func TestAPI_Banner(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "API is running...", string(body))
}

/*
TestAPI_RegisterSetsNoCookie verifies that registration returns 201 without
establishing a session: no Set-Cookie header is sent.
*/
func TestAPI_RegisterSetsNoCookie(t *testing.T) {
	server := newTestServer(t)

	payload := `{"username":"alice","email":"alice@example.com","password":"s3cret-password"}`
	response, err := http.Post(server.URL+"/api/auth/register", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()

	assert.Equal(t, http.StatusCreated, response.StatusCode)
	assert.Empty(t, response.Cookies())
}

/*
TestAPI_Register_EmailIsOpaque verifies that registration treats the email as
an opaque non-empty string: no format rule is imposed beyond presence.
*/
func TestAPI_Register_EmailIsOpaque(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	apiClient, err := client.New(server.URL)
	require.NoError(t, err)

	registered, err := apiClient.Register(ctx, client.RegisterInput{
		Username: "legacy", Email: "not-an-rfc-address", Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "not-an-rfc-address", registered.Email)

	// A missing field is still rejected.
	_, err = apiClient.Register(ctx, client.RegisterInput{
		Username: "legacy2", Password: "s3cret-password",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.As(err).HTTPStatus)
}

/*
TestAPI_FullLifecycle drives the whole surface through the Go client:
register, login, task CRUD with server-side defaults, delete, and logout.
*/
func TestAPI_FullLifecycle(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	apiClient, err := client.New(server.URL)
	require.NoError(t, err)

	// ── Register & Login ──────────────────────────────────────────────────

	registered, err := apiClient.Register(ctx, client.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.Username)

	// Registration issued no session; the profile endpoint must reject us.
	_, err = apiClient.Profile(ctx)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	identity, err := apiClient.Login(ctx, "alice@example.com", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, identity.ID)

	profile, err := apiClient.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", profile.Email)

	// ── Create with defaults ──────────────────────────────────────────────

	created, err := apiClient.CreateTask(ctx, client.TaskInput{Title: "Buy groceries"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, created.Status)
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, identity.ID, created.UserID)

	listed, err := apiClient.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Buy groceries", listed[0].Title)

	// ── Partial update ────────────────────────────────────────────────────

	updated, err := apiClient.UpdateTask(ctx, created.ID, client.TaskUpdate{Status: pointer.To("completed")})
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, updated.Status)
	assert.Equal(t, "Buy groceries", updated.Title)

	// ── Delete ────────────────────────────────────────────────────────────

	deletedID, err := apiClient.DeleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deletedID)

	listed, err = apiClient.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// ── Logout ────────────────────────────────────────────────────────────

	require.NoError(t, apiClient.Logout(ctx))

	_, err = apiClient.Profile(ctx)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	// Logout is idempotent: repeating it without a session still succeeds.
	require.NoError(t, apiClient.Logout(ctx))
}

/*
TestAPI_CreateTask_RequiresTitle verifies the validation error surface for
task creation.
*/
func TestAPI_CreateTask_RequiresTitle(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	apiClient, err := client.New(server.URL)
	require.NoError(t, err)

	_, err = apiClient.Register(ctx, client.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-password",
	})
	require.NoError(t, err)
	_, err = apiClient.Login(ctx, "alice@example.com", "s3cret-password")
	require.NoError(t, err)

	_, err = apiClient.CreateTask(ctx, client.TaskInput{Description: "no title"})
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 400, ae.HTTPStatus)
	assert.Equal(t, "Please add a title", ae.Message)
}

/*
TestAPI_UpdateTask_ClearsOptionalFields verifies the explicit-empty update
semantics end to end: a pointer to "" blanks the description and removes the
due date, while absent fields stay untouched.
*/
func TestAPI_UpdateTask_ClearsOptionalFields(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	apiClient, err := client.New(server.URL)
	require.NoError(t, err)

	_, err = apiClient.Register(ctx, client.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-password",
	})
	require.NoError(t, err)
	_, err = apiClient.Login(ctx, "alice@example.com", "s3cret-password")
	require.NoError(t, err)

	created, err := apiClient.CreateTask(ctx, client.TaskInput{
		Title:       "Dentist",
		Description: "Bring insurance card",
		DueDate:     "2026-09-15",
	})
	require.NoError(t, err)
	require.NotNil(t, created.DueDate)
	require.NotEmpty(t, created.Description)

	updated, err := apiClient.UpdateTask(ctx, created.ID, client.TaskUpdate{
		Description: pointer.To(""),
		DueDate:     pointer.To(""),
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "Dentist", updated.Title)
}

/*
TestAPI_OwnershipIsolation verifies that one user can neither see nor mutate
another user's tasks through any endpoint.
*/
func TestAPI_OwnershipIsolation(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	signIn := func(username, email string) *client.Client {
		c, err := client.New(server.URL)
		require.NoError(t, err)
		_, err = c.Register(ctx, client.RegisterInput{
			Username: username, Email: email, Password: "s3cret-password",
		})
		require.NoError(t, err)
		_, err = c.Login(ctx, email, "s3cret-password")
		require.NoError(t, err)
		return c
	}

	alice := signIn("alice", "alice@example.com")
	mallory := signIn("mallory", "mallory@example.com")

	created, err := alice.CreateTask(ctx, client.TaskInput{Title: "Private task"})
	require.NoError(t, err)

	// Invisible in the other user's list.
	listed, err := mallory.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Mutations by the non-owner fail with 401.
	_, err = mallory.UpdateTask(ctx, created.ID, client.TaskUpdate{Title: pointer.To("Hijacked")})
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	_, err = mallory.DeleteTask(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	// The owner still sees the untouched record.
	listed, err = alice.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Private task", listed[0].Title)
}

/*
TestAPI_GoogleLogin verifies federated login: a brand-new email creates an
account and a session in one step.
*/
func TestAPI_GoogleLogin(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	apiClient, err := client.New(server.URL)
	require.NoError(t, err)

	identity, err := apiClient.GoogleLogin(ctx, client.GoogleInput{
		Email: "dave@example.com", Username: "dave", GoogleID: "g-456",
	})
	require.NoError(t, err)
	assert.Equal(t, "dave", identity.Username)

	profile, err := apiClient.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, profile.ID)
}

/*
TestAPI_Health verifies the liveness probe answers without authentication.
*/
func TestAPI_Health(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()

	assert.Equal(t, http.StatusOK, response.StatusCode)
}
