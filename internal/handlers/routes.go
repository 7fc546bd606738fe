package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/task-assignment-api/internal/dto"
)

// RegisterRoutes wires the API surface onto the router.
func RegisterRoutes(r *gin.Engine, taskHandler *TaskHandler, userHandler *UserHandler) {
	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.Envelope{Message: "OK", Data: "Data Works"})
	})

	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	users := api.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}
}
