package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vortexkeep/internal/app"
	"vortexkeep/internal/model"
	"vortexkeep/internal/transport/http/middleware"
	"vortexkeep/internal/transport/http/response"
)

type TaskHandler struct {
	taskService *app.TaskService
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

// UpdateTaskRequest distinguishes absent fields from zero values; only the
// fields the client sent are applied.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func NewTaskHandler(taskService *app.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) List(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication token required")
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to fetch tasks.")
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication token required")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Task title is required.")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), app.CreateTaskInput{
		UserID:      identity.UserID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrTitleRequired), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Task title is required.")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to add task.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task added successfully!",
		"task":    task,
	})
}

func (h *TaskHandler) Update(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication token required")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, "Task not found or does not belong to user.")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "No fields provided for update.")
		return
	}

	_, err := h.taskService.Update(c.Request.Context(), app.UpdateTaskInput{
		UserID: identity.UserID,
		TaskID: taskID,
		Patch: model.TaskPatch{
			Title:       req.Title,
			Description: req.Description,
			Completed:   req.Completed,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoFieldsToUpdate), errors.Is(err, app.ErrTitleRequired), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "No valid fields to update.")
		case errors.Is(err, app.ErrTaskNotFound):
			response.Error(c, http.StatusNotFound, "Task not found or does not belong to user.")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to update task.")
		}
		return
	}

	response.Message(c, http.StatusOK, "Task updated successfully!")
}

func (h *TaskHandler) Delete(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication token required")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, "Task not found or does not belong to user.")
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), identity.UserID, taskID); err != nil {
		switch {
		case errors.Is(err, app.ErrTaskNotFound), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusNotFound, "Task not found or does not belong to user.")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to delete task.")
		}
		return
	}

	response.Message(c, http.StatusOK, "Task deleted successfully!")
}

// A non-numeric id cannot match any row, so it maps to not-found like any
// other unmatched id.
func parseTaskID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}
