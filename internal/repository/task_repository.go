package repository

import (
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/query"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id string, scopes ...func(db *gorm.DB) *gorm.DB) (*models.Task, error) {
	var task models.Task
	if err := r.db.Scopes(scopes...).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks matching a query plan
func (r *GormTaskRepository) List(plan *query.Plan) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := r.db.Model(&models.Task{}).Scopes(plan.Scope()).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count returns the cardinality of the plan's filtered set
func (r *GormTaskRepository) Count(plan *query.Plan) (int64, error) {
	var total int64
	if err := r.db.Model(&models.Task{}).Scopes(plan.FilterScope()).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
