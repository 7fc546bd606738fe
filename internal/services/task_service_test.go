package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTaskService(t *testing.T) (*TaskService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))

	return NewTaskService(repository.NewTaskRepository(db), NewAssignmentService(db)), db
}

func TestCreateTaskRequiresNameAndDeadline(t *testing.T) {
	svc, _ := newTaskService(t)

	_, err := svc.CreateTask(TaskFields{Deadline: time.Now()})
	assert.ErrorIs(t, err, ErrTaskFieldsMissing)

	_, err = svc.CreateTask(TaskFields{Name: "no deadline"})
	assert.ErrorIs(t, err, ErrTaskFieldsMissing)
}

func TestTaskOperationsRejectMalformedID(t *testing.T) {
	svc, _ := newTaskService(t)
	fields := TaskFields{Name: "x", Deadline: time.Now()}

	_, err := svc.GetTask("nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.UpdateTask("nope", fields)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.ErrorIs(t, svc.DeleteTask("nope"), ErrTaskNotFound)
}

func TestCreateTaskDefaults(t *testing.T) {
	svc, _ := newTaskService(t)

	task, err := svc.CreateTask(TaskFields{Name: "plain", Deadline: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.False(t, task.Completed)
	assert.Empty(t, task.AssignedUser)
	assert.Equal(t, models.UnassignedName, task.AssignedUserName)
	assert.False(t, task.DateCreated.IsZero())
}
