package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/plannerhq/planner/internal/api/dto"
	"github.com/plannerhq/planner/internal/api/middleware"
	"github.com/plannerhq/planner/internal/domain/task"
	"github.com/plannerhq/planner/internal/pkg/errors"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/pkg/utils"
	"github.com/plannerhq/planner/internal/pkg/validator"
)

// TaskHandler handles task requests
type TaskHandler struct {
	taskService task.Service
	logger      *logger.Logger
	validator   *validator.Validator
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService task.Service, log *logger.Logger, val *validator.Validator) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      log,
		validator:   val,
	}
}

// Create creates a task
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task fields"
// @Success 201 {object} task.Task "Created task"
// @Failure 403 {object} utils.ErrorResponse "Plan limit reached"
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	created, err := h.taskService.Create(r.Context(), userID, &task.Task{
		Title:   req.Title,
		Notes:   req.Notes,
		DueDate: req.DueDate,
	})
	if err != nil {
		h.writeServiceError(w, err, "Failed to create task")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, created)
}

// List lists the caller's tasks
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.TaskListResponse "Tasks"
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	limit, offset := parsePagination(r, 50)

	tasks, total, err := h.taskService.List(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list tasks")
		return
	}

	if tasks == nil {
		tasks = []*task.Task{}
	}

	utils.WriteSuccess(w, http.StatusOK, dto.TaskListResponse{
		Tasks:  tasks,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Get retrieves a task
// @Summary Get task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} task.Task "Task"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	t, err := h.taskService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "Failed to get task")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, t)
}

// Update updates a task
// @Summary Update task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Task fields"
// @Success 200 {object} task.Task "Updated task"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	existing, err := h.taskService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "Failed to get task")
		return
	}

	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}
	if req.DueDate != nil {
		existing.DueDate = req.DueDate
	}
	if req.Done != nil {
		existing.Done = *req.Done
	}

	updated, err := h.taskService.Update(r.Context(), userID, existing)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update task")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, updated)
}

// Delete deletes a task
// @Summary Delete task
// @Tags Tasks
// @Param id path string true "Task ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err, "Failed to delete task")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Task deleted", nil)
}

func (h *TaskHandler) writeServiceError(w http.ResponseWriter, err error, msg string) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	h.logger.ErrorWithErr(err, msg)
	utils.WriteError(w, errors.Internal(msg, err))
}

func parsePagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
