package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/query"
	"github.com/taskforge/task-assignment-api/internal/repository"
	"gorm.io/gorm"
)

var ErrTaskFieldsMissing = errors.New("name and deadline are required")

// TaskService validates task requests and dispatches mutations to the
// assignment coordinator. It never touches user rows directly.
type TaskService struct {
	taskRepo    repository.TaskRepository
	assignments *AssignmentService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, assignments *AssignmentService) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		assignments: assignments,
	}
}

// ListTasks returns tasks matching the query plan
func (s *TaskService) ListTasks(plan *query.Plan) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CountTasks returns the cardinality of the plan's filtered set
func (s *TaskService) CountTasks(plan *query.Plan) (int64, error) {
	total, err := s.taskRepo.Count(plan)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return total, nil
}

// GetTask returns a single task, optionally projected
func (s *TaskService) GetTask(id string, scopes ...func(db *gorm.DB) *gorm.DB) (*models.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrTaskNotFound
	}

	task, err := s.taskRepo.FindByID(id, scopes...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask validates and creates a task through the coordinator
func (s *TaskService) CreateTask(fields TaskFields) (*models.Task, error) {
	if fields.Name == "" || fields.Deadline.IsZero() {
		return nil, ErrTaskFieldsMissing
	}

	task := &models.Task{
		Name:         fields.Name,
		Description:  fields.Description,
		Deadline:     fields.Deadline,
		Completed:    fields.Completed,
		AssignedUser: fields.AssignedUser,
	}

	if err := s.assignments.AssignOnCreate(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask validates and applies a full task update through the coordinator
func (s *TaskService) UpdateTask(id string, fields TaskFields) (*models.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrTaskNotFound
	}
	if fields.Name == "" || fields.Deadline.IsZero() {
		return nil, ErrTaskFieldsMissing
	}

	return s.assignments.Reassign(id, fields)
}

// DeleteTask deletes a task through the coordinator
func (s *TaskService) DeleteTask(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrTaskNotFound
	}
	return s.assignments.Unassign(id)
}
