package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plannerhq/planner/internal/api/dto"
	"github.com/plannerhq/planner/internal/api/middleware"
	"github.com/plannerhq/planner/internal/domain/habit"
	"github.com/plannerhq/planner/internal/pkg/errors"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/pkg/utils"
	"github.com/plannerhq/planner/internal/pkg/validator"
)

// HabitHandler handles habit requests
type HabitHandler struct {
	habitService habit.Service
	logger       *logger.Logger
	validator    *validator.Validator
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habitService habit.Service, log *logger.Logger, val *validator.Validator) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
		logger:       log,
		validator:    val,
	}
}

// Create creates a habit
// @Summary Create habit
// @Tags Habits
// @Accept json
// @Produce json
// @Param request body dto.CreateHabitRequest true "Habit fields"
// @Success 201 {object} habit.Habit "Created habit"
// @Failure 403 {object} utils.ErrorResponse "Plan limit reached"
// @Security BearerAuth
// @Router /habits [post]
func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	created, err := h.habitService.Create(r.Context(), userID, &habit.Habit{
		Name:        req.Name,
		Description: req.Description,
		Cadence:     req.Cadence,
	})
	if err != nil {
		h.writeServiceError(w, err, "Failed to create habit")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, created)
}

// List lists the caller's habits
// @Summary List habits
// @Tags Habits
// @Produce json
// @Success 200 {array} habit.Habit "Habits"
// @Security BearerAuth
// @Router /habits [get]
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	habits, err := h.habitService.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list habits")
		return
	}

	if habits == nil {
		habits = []*habit.Habit{}
	}

	utils.WriteSuccess(w, http.StatusOK, habits)
}

// Get retrieves a habit with its streak summary
// @Summary Get habit
// @Tags Habits
// @Produce json
// @Param id path string true "Habit ID"
// @Success 200 {object} dto.HabitWithStreak "Habit and streak"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /habits/{id} [get]
func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	id := chi.URLParam(r, "id")

	hb, err := h.habitService.Get(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get habit")
		return
	}

	streak, err := h.habitService.GetStreak(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to compute streak")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.HabitWithStreak{Habit: hb, Streak: streak})
}

// Update updates a habit
// @Summary Update habit
// @Tags Habits
// @Accept json
// @Produce json
// @Param id path string true "Habit ID"
// @Param request body dto.UpdateHabitRequest true "Habit fields"
// @Success 200 {object} habit.Habit "Updated habit"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /habits/{id} [put]
func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	existing, err := h.habitService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "Failed to get habit")
		return
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Cadence != nil {
		existing.Cadence = *req.Cadence
	}

	updated, err := h.habitService.Update(r.Context(), userID, existing)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update habit")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, updated)
}

// Delete deletes a habit
// @Summary Delete habit
// @Tags Habits
// @Param id path string true "Habit ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /habits/{id} [delete]
func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.habitService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err, "Failed to delete habit")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Habit deleted", nil)
}

// CheckIn records a completion for a habit
// @Summary Check in
// @Tags Habits
// @Accept json
// @Produce json
// @Param id path string true "Habit ID"
// @Param request body dto.CheckInRequest false "Check-in day"
// @Success 200 {object} habit.Streak "Updated streak"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /habits/{id}/checkin [post]
func (h *HabitHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.CheckInRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.WriteError(w, errors.BadRequest("Invalid request body"))
			return
		}
		if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
			utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
			return
		}
	}

	id := chi.URLParam(r, "id")

	if err := h.habitService.CheckIn(r.Context(), userID, id, req.Day); err != nil {
		h.writeServiceError(w, err, "Failed to record check-in")
		return
	}

	streak, err := h.habitService.GetStreak(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to compute streak")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, streak)
}

func (h *HabitHandler) writeServiceError(w http.ResponseWriter, err error, msg string) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	h.logger.ErrorWithErr(err, msg)
	utils.WriteError(w, errors.Internal(msg, err))
}
