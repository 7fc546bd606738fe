package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/task-assignment-api/internal/dto"
	"github.com/taskforge/task-assignment-api/internal/query"
	"github.com/taskforge/task-assignment-api/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers returns users matching the request's query parameters, or their
// count when count=true. User listings are not capped.
func (h *UserHandler) ListUsers(c *gin.Context) {
	plan, err := query.FromContext(c, query.UserFields, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	if plan.Count {
		total, err := h.users.CountUsers(plan)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.Envelope{Message: "OK", Data: total})
		return
	}

	users, err := h.users.ListUsers(plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Message: "OK", Data: users})
}

// CreateUser creates a new user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Message: "invalid request body", Data: nil})
		return
	}

	user, err := h.users.CreateUser(userFields(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Envelope{Message: "created", Data: user})
}

// GetUser returns a specific user by ID, optionally projected by select=
func (h *UserHandler) GetUser(c *gin.Context) {
	scope, err := query.ProjectionScope(selectParam(c), query.UserFields)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.GetUser(c.Param("id"), scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Message: "OK", Data: user})
}

// UpdateUser replaces a user's fields and rebinds their pending task set
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Message: "invalid request body", Data: nil})
		return
	}

	user, err := h.users.UpdateUser(c.Param("id"), userFields(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Message: "updated", Data: user})
}

// DeleteUser deletes a user, releasing every task in their pending set
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Message: "deleted", Data: nil})
}

func userFields(req dto.UserRequest) services.UserFields {
	return services.UserFields{
		Name:         req.Name,
		Email:        req.Email,
		PendingTasks: req.PendingTasks,
	}
}
