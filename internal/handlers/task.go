package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/task-assignment-api/internal/constants"
	"github.com/taskforge/task-assignment-api/internal/dto"
	"github.com/taskforge/task-assignment-api/internal/query"
	"github.com/taskforge/task-assignment-api/internal/services"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// ListTasks returns tasks matching the request's query parameters, or their
// count when count=true. Listing is capped at 100 rows; counting is not.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	plan, err := query.FromContext(c, query.TaskFields, constants.MaxTaskPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	if plan.Count {
		total, err := h.tasks.CountTasks(plan)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.Envelope{Message: "OK", Data: total})
		return
	}

	tasks, err := h.tasks.ListTasks(plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Message: "OK", Data: tasks})
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Message: "invalid request body", Data: nil})
		return
	}

	task, err := h.tasks.CreateTask(taskFields(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Envelope{Message: "created", Data: task})
}

// GetTask returns a specific task by ID, optionally projected by select=
func (h *TaskHandler) GetTask(c *gin.Context) {
	scope, err := query.ProjectionScope(selectParam(c), query.TaskFields)
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := h.tasks.GetTask(c.Param("id"), scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Message: "OK", Data: task})
}

// UpdateTask replaces a task's fields, moving its pending entry as needed
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Message: "invalid request body", Data: nil})
		return
	}

	task, err := h.tasks.UpdateTask(c.Param("id"), taskFields(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Message: "updated", Data: task})
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.tasks.DeleteTask(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Message: "deleted", Data: nil})
}

func taskFields(req dto.TaskRequest) services.TaskFields {
	fields := services.TaskFields{
		Name:         req.Name,
		Description:  req.Description,
		Completed:    req.Completed,
		AssignedUser: req.AssignedUser,
	}
	if req.Deadline != nil {
		fields.Deadline = time.UnixMilli(*req.Deadline)
	}
	return fields
}
