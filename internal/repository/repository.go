package repository

import (
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/query"
	"gorm.io/gorm"
)

// TaskRepository defines the read-side interface for task data access.
// All cross-entity mutations go through the assignment coordinator instead.
type TaskRepository interface {
	// FindByID finds a task by ID, optionally shaped by projection scopes
	FindByID(id string, scopes ...func(db *gorm.DB) *gorm.DB) (*models.Task, error)

	// List retrieves tasks matching a query plan
	List(plan *query.Plan) ([]models.Task, error)

	// Count returns the cardinality of the plan's filtered set
	Count(plan *query.Plan) (int64, error)
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID, optionally shaped by projection scopes
	FindByID(id string, scopes ...func(db *gorm.DB) *gorm.DB) (*models.User, error)

	// List retrieves users matching a query plan
	List(plan *query.Plan) ([]models.User, error)

	// Count returns the cardinality of the plan's filtered set
	Count(plan *query.Plan) (int64, error)

	// EmailInUse reports whether another user already holds the email.
	// excludeID skips the user's own row on updates.
	EmailInUse(email, excludeID string) (bool, error)
}
