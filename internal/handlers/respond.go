package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/task-assignment-api/internal/dto"
	"github.com/taskforge/task-assignment-api/internal/query"
	"github.com/taskforge/task-assignment-api/internal/services"
)

// respondError maps service and query errors onto the envelope shape and the
// matching status code. Anything unrecognized is a server fault.
func respondError(c *gin.Context, err error) {
	var conflict *services.TaskConflictError
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.Envelope{Message: err.Error(), Data: nil})
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, dto.Envelope{Message: conflict.Error(), Data: conflict.TaskID})
	case errors.Is(err, services.ErrTaskFieldsMissing),
		errors.Is(err, services.ErrUserFieldsMissing),
		errors.Is(err, services.ErrEmailInUse),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, query.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, dto.Envelope{Message: err.Error(), Data: nil})
	default:
		c.JSON(http.StatusInternalServerError, dto.Envelope{Message: "server error", Data: nil})
	}
}

// selectParam reads the projection parameter, honoring the legacy filter alias.
func selectParam(c *gin.Context) string {
	if sel := c.Query("select"); sel != "" {
		return sel
	}
	return c.Query("filter")
}
