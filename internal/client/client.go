// Copyright (c) 2026 TaskFlow. All rights reserved.

/*
Package client is the Go consumer of the TaskFlow API.

It bundles three pieces:

  - Client: a cookie-aware HTTP wrapper over the REST surface.
  - Store: the local application state (auth status + task list) that is
    only mutated after the server confirms an operation.
  - Filter: pure, in-memory narrowing of the loaded task list.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/sec"
	"github.com/taskflowhq/taskflow/internal/task"
)

// defaultRequestTimeout bounds a single API call.
const defaultRequestTimeout = 15 * time.Second

// Client talks to the TaskFlow REST API.
//
// The session token lives in an HTTP-only cookie managed by the embedded
// cookie jar; the client never sees or stores the token itself.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Client for the given API base URL, e.g. "http://localhost:8080".
func New(baseURL string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: invalid base URL %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("client: cookie jar init failed: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: defaultRequestTimeout,
		},
	}, nil
}

// # Authentication Calls

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. No session is established; call Login next.
func (client *Client) Register(ctx context.Context, input RegisterInput) (*sec.Identity, error) {
	var identity sec.Identity
	if err := client.call(ctx, http.MethodPost, "/api/auth/register", input, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Login performs password authentication. On success the session cookie is
// captured by the jar and attached to every subsequent call.
func (client *Client) Login(ctx context.Context, email, password string) (*sec.Identity, error) {
	payload := map[string]string{"email": email, "password": password}

	var identity sec.Identity
	if err := client.call(ctx, http.MethodPost, "/api/auth/login", payload, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// GoogleInput carries the identity asserted by a completed Google sign-in.
type GoogleInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	GoogleID string `json:"googleId"`
}

// GoogleLogin performs federated authentication, establishing a session
// exactly like Login.
func (client *Client) GoogleLogin(ctx context.Context, input GoogleInput) (*sec.Identity, error) {
	var identity sec.Identity
	if err := client.call(ctx, http.MethodPost, "/api/auth/google", input, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Logout asks the server to clear the session cookie. It succeeds whether or
// not a session exists.
func (client *Client) Logout(ctx context.Context) error {
	return client.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Profile fetches the authenticated user. A 401 means the stored session, if
// any, is no longer valid.
func (client *Client) Profile(ctx context.Context) (*sec.Identity, error) {
	var identity sec.Identity
	if err := client.call(ctx, http.MethodGet, "/api/auth/profile", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// # Task Calls

// ListTasks returns the session user's tasks, newest first.
func (client *Client) ListTasks(ctx context.Context) ([]*task.Task, error) {
	tasks := make([]*task.Task, 0)
	if err := client.call(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// TaskInput is the payload for task creation. Zero-valued fields are omitted
// from the JSON so the server applies its defaults.
type TaskInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// TaskUpdate is the partial payload for task updates, mirroring the server's
// contract: nil fields are absent from the JSON and stay untouched, while a
// pointer to the empty string is sent explicitly — clearing the due date or
// blanking the description.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// CreateTask creates a task owned by the session user.
func (client *Client) CreateTask(ctx context.Context, input TaskInput) (*task.Task, error) {
	var created task.Task
	if err := client.call(ctx, http.MethodPost, "/api/tasks", input, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask partially updates an owned task and returns the resulting record.
func (client *Client) UpdateTask(ctx context.Context, taskID string, input TaskUpdate) (*task.Task, error) {
	var updated task.Task
	if err := client.call(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(taskID), input, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask permanently removes an owned task and returns the deleted id.
func (client *Client) DeleteTask(ctx context.Context, taskID string) (string, error) {
	var acknowledged struct {
		ID string `json:"id"`
	}
	if err := client.call(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(taskID), nil, &acknowledged); err != nil {
		return "", err
	}
	return acknowledged.ID, nil
}

// # Transport

// call performs one JSON round trip. Non-2xx responses are decoded into an
// [apperr.AppError] carrying the server's message and HTTP status.
func (client *Client) call(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("client: encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode >= 400 {
		return decodeError(response)
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		return fmt.Errorf("client: decode %s %s response: %w", method, path, err)
	}

	return nil
}

// decodeError maps a {"message": ...} error body onto the shared error type.
func decodeError(response *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}

	raw, _ := io.ReadAll(io.LimitReader(response.Body, 1<<16))
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		body.Message = http.StatusText(response.StatusCode)
	}

	return &apperr.AppError{
		Code:       apperr.CodeForStatus(response.StatusCode),
		Message:    body.Message,
		HTTPStatus: response.StatusCode,
	}
}
