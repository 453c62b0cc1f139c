// Copyright (c) 2026 TaskFlow. All rights reserved.

package task

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taskflowhq/taskflow/internal/platform/request"
	"github.com/taskflowhq/taskflow/internal/platform/respond"
	"github.com/taskflowhq/taskflow/internal/platform/validate"
)

// Handler implements the task CRUD HTTP endpoints.
//
// All routes are protected: the router mounts them behind the session
// verifier, so every request arrives with a verified identity attached.
type Handler struct {
	taskService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{taskService: service}
}

// Routes returns a [chi.Router] with the task endpoints mounted behind the
// session-verifier middleware.
//
// # Endpoints
//   - GET    /     : List the acting user's tasks, newest first.
//   - POST   /     : Create a task owned by the acting user.
//   - PUT    /{id} : Partially update an owned task.
//   - DELETE /{id} : Permanently delete an owned task.
func (handler *Handler) Routes(protect func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(protect)

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.remove)

	return router
}

// list handles GET /api/tasks requests.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tasks, err := handler.taskService.List(request.Context(), actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tasks)
}

// createTaskRequest represents the JSON payload for task creation.
//
// The dueDate field accepts either RFC 3339 or a bare calendar date, which is
// what browser date inputs submit.
type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// create handles POST /api/tasks requests.
//
// # Returns
//   - HTTP 201 Created with the persisted task (server-assigned id,
//     timestamps, and defaults included).
//   - HTTP 400 Bad Request on a missing title.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createTaskRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.taskService.Create(request.Context(), actorID, CreateInput{
		Title:       input.Title,
		Description: input.Description,
		Status:      Status(input.Status),
		Priority:    Priority(input.Priority),
		DueDate:     dueDate,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

// updateTaskRequest is the partial payload for task updates.
//
// Pointer fields distinguish "absent" from "set to zero value". A present
// but empty dueDate clears the due date. Any owner/id fields in the payload
// are simply not representable and therefore ignored.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// update handles PUT /api/tasks/{id} requests.
//
// # Returns
//   - HTTP 200 OK with the updated record.
//   - HTTP 404 Not Found if no task has the id.
//   - HTTP 401 Unauthorized if the task belongs to another user.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateTaskRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	partial := UpdateInput{
		Title:       input.Title,
		Description: input.Description,
	}
	if input.Status != nil {
		status := Status(*input.Status)
		partial.Status = &status
	}
	if input.Priority != nil {
		priority := Priority(*input.Priority)
		partial.Priority = &priority
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			partial.ClearDueDate = true
		} else {
			dueDate, err := parseDueDate(*input.DueDate)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}
			partial.DueDate = dueDate
		}
	}

	updated, err := handler.taskService.Update(request.Context(), actorID, requestutil.ID(request, "id"), partial)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

// deleteResponse acknowledges a deletion with the removed id.
type deleteResponse struct {
	ID string `json:"id"`
}

// remove handles DELETE /api/tasks/{id} requests.
//
// # Returns
//   - HTTP 200 OK with `{id}`.
//   - HTTP 404 Not Found if no task has the id.
//   - HTTP 401 Unauthorized if the task belongs to another user.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	deletedID, err := handler.taskService.Delete(request.Context(), actorID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, deleteResponse{ID: deletedID})
}

// parseDueDate accepts RFC 3339 timestamps and bare calendar dates.
// An empty string maps to nil (no due date).
func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return &parsed, nil
	}

	return nil, validate.RequiredError("dueDate", "Must be an RFC 3339 timestamp or YYYY-MM-DD date")
}
