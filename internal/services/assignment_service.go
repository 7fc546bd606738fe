package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskforge/task-assignment-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAssigneeNotFound = errors.New("assignedUser does not exist")
)

// TaskConflictError is returned when a rebind tries to claim a task that is
// already assigned to a different user. The offending task id travels with it
// so the response can report which task blocked the update.
type TaskConflictError struct {
	TaskID string
}

func (e *TaskConflictError) Error() string {
	return "task already assigned to another user"
}

// TaskFields carries the full replacement state for a task write.
type TaskFields struct {
	Name         string
	Description  string
	Deadline     time.Time
	Completed    bool
	AssignedUser string
}

// UserFields carries the full replacement state for a user write.
type UserFields struct {
	Name         string
	Email        string
	PendingTasks []string
}

// AssignmentService keeps Task.assignedUser/assignedUserName and
// User.pendingTasks mutually consistent. Every operation runs as a single
// transaction spanning both tables; a failure at any step aborts the whole
// write so no partial state is ever committed.
type AssignmentService struct {
	db *gorm.DB
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// AssignOnCreate persists a new task and, when it arrives assigned and not
// completed, records it in the assignee's pending set. The assignee's name is
// snapshotted into assignedUserName at write time.
func (s *AssignmentService) AssignOnCreate(task *models.Task) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		task.AssignedUserName = models.UnassignedName
		if task.AssignedUser != "" {
			var user models.User
			if err := tx.First(&user, "id = ?", task.AssignedUser).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAssigneeNotFound
				}
				return fmt.Errorf("failed to resolve assignee: %w", err)
			}
			task.AssignedUserName = user.Name
		}

		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		if task.AssignedUser != "" && !task.Completed {
			if err := s.addPending(tx, task.AssignedUser, task.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reassign applies a full task update, moving the task's pending entry between
// users as the assignment changes. The pending entry is pulled from the
// previous assignee only when the assignee actually changes or the task
// becomes completed, so reassigning to the same user never churns the set.
func (s *AssignmentService) Reassign(taskID string, fields TaskFields) (*models.Task, error) {
	var updated *models.Task

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if task.AssignedUser != "" && (task.AssignedUser != fields.AssignedUser || fields.Completed) {
			if err := s.removePending(tx, task.AssignedUser, task.ID); err != nil {
				return err
			}
		}

		assignedUserName := models.UnassignedName
		if fields.AssignedUser != "" {
			var user models.User
			if err := tx.First(&user, "id = ?", fields.AssignedUser).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAssigneeNotFound
				}
				return fmt.Errorf("failed to resolve assignee: %w", err)
			}
			assignedUserName = user.Name

			if !fields.Completed {
				if err := s.addPending(tx, fields.AssignedUser, task.ID); err != nil {
					return err
				}
			}
		}

		task.Name = fields.Name
		task.Description = fields.Description
		task.Deadline = fields.Deadline
		task.Completed = fields.Completed
		task.AssignedUser = fields.AssignedUser
		task.AssignedUserName = assignedUserName

		if err := tx.Save(&task).Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		updated = &task
		return nil
	})

	return updated, err
}

// Unassign deletes a task, removing its pending entry from the assignee first.
func (s *AssignmentService) Unassign(taskID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if task.AssignedUser != "" {
			if err := s.removePending(tx, task.AssignedUser, task.ID); err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Task{}, "id = ?", task.ID).Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

// Rebind replaces a user's pending set. Tasks the user held that are absent
// from the new set are released to unassigned; tasks in the new set are
// claimed for this user unless completed. Claiming a task that is assigned to
// a different user aborts the whole write with a TaskConflictError, checked
// against in-transaction state.
func (s *AssignmentService) Rebind(userID string, fields UserFields) (*models.User, error) {
	var updated *models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		pending := uniqueStrings(fields.PendingTasks)

		release := tx.Model(&models.Task{}).Where("assigned_user = ?", user.ID)
		if len(pending) > 0 {
			release = release.Where("id NOT IN ?", pending)
		}
		if err := release.Updates(map[string]interface{}{
			"assigned_user":      "",
			"assigned_user_name": models.UnassignedName,
		}).Error; err != nil {
			return fmt.Errorf("failed to release tasks: %w", err)
		}

		if len(pending) > 0 {
			var tasks []models.Task
			if err := tx.Where("id IN ?", pending).Find(&tasks).Error; err != nil {
				return fmt.Errorf("failed to resolve pending tasks: %w", err)
			}

			for _, task := range tasks {
				if task.AssignedUser != "" && task.AssignedUser != user.ID {
					return &TaskConflictError{TaskID: task.ID}
				}
				if task.Completed {
					continue
				}
				if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
					"assigned_user":      user.ID,
					"assigned_user_name": fields.Name,
				}).Error; err != nil {
					return fmt.Errorf("failed to claim task: %w", err)
				}
			}
		}

		user.Name = fields.Name
		user.Email = fields.Email
		user.PendingTasks = models.StringList(pending)

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		updated = &user
		return nil
	})

	return updated, err
}

// ReleaseOnDelete deletes a user and resets every task in their pending set to
// unassigned. No conflict check is needed since the user is going away.
func (s *AssignmentService) ReleaseOnDelete(userID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		if len(user.PendingTasks) > 0 {
			if err := tx.Model(&models.Task{}).Where("id IN ?", []string(user.PendingTasks)).Updates(map[string]interface{}{
				"assigned_user":      "",
				"assigned_user_name": models.UnassignedName,
			}).Error; err != nil {
				return fmt.Errorf("failed to release tasks: %w", err)
			}
		}

		if err := tx.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// addPending adds the task id to the user's pending set, ignoring duplicates.
func (s *AssignmentService) addPending(tx *gorm.DB, userID, taskID string) error {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to load assignee: %w", err)
	}

	if user.PendingTasks.Contains(taskID) {
		return nil
	}
	user.PendingTasks = append(user.PendingTasks, taskID)

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
		Update("pending_tasks", user.PendingTasks).Error; err != nil {
		return fmt.Errorf("failed to record pending task: %w", err)
	}
	return nil
}

// removePending removes the task id from the user's pending set. A missing
// user is not an error: the referenced user may already be gone.
func (s *AssignmentService) removePending(tx *gorm.DB, userID, taskID string) error {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load assignee: %w", err)
	}

	if !user.PendingTasks.Contains(taskID) {
		return nil
	}

	remaining := make(models.StringList, 0, len(user.PendingTasks))
	for _, id := range user.PendingTasks {
		if id != taskID {
			remaining = append(remaining, id)
		}
	}

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
		Update("pending_tasks", remaining).Error; err != nil {
		return fmt.Errorf("failed to remove pending task: %w", err)
	}
	return nil
}

// uniqueStrings removes duplicate values while preserving order
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
