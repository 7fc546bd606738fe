package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))

	return NewUserService(repository.NewUserRepository(db), NewAssignmentService(db)), db
}

func TestCreateUserRequiresNameAndEmail(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.CreateUser(UserFields{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrUserFieldsMissing)

	_, err = svc.CreateUser(UserFields{Name: "no email"})
	assert.ErrorIs(t, err, ErrUserFieldsMissing)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.CreateUser(UserFields{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = svc.CreateUser(UserFields{Name: "Clone", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestCreateUserDeduplicatesPendingTasks(t *testing.T) {
	svc, _ := newUserService(t)

	user, err := svc.CreateUser(UserFields{
		Name:         "Alice",
		Email:        "alice@example.com",
		PendingTasks: []string{"t1", "t1", "t2"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StringList{"t1", "t2"}, user.PendingTasks)
}

func TestUserOperationsRejectMalformedID(t *testing.T) {
	svc, _ := newUserService(t)
	fields := UserFields{Name: "x", Email: "x@example.com"}

	_, err := svc.GetUser("nope")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UpdateUser("nope", fields)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.DeleteUser("nope"), ErrUserNotFound)
}
