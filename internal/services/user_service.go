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

var (
	ErrUserFieldsMissing = errors.New("name and email are required")
	ErrEmailInUse        = errors.New("email already in use")
)

// UserService validates user requests and dispatches pendingTasks mutations to
// the assignment coordinator. It never touches task rows directly.
type UserService struct {
	userRepo    repository.UserRepository
	assignments *AssignmentService
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, assignments *AssignmentService) *UserService {
	return &UserService{
		userRepo:    userRepo,
		assignments: assignments,
	}
}

// ListUsers returns users matching the query plan
func (s *UserService) ListUsers(plan *query.Plan) ([]models.User, error) {
	users, err := s.userRepo.List(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CountUsers returns the cardinality of the plan's filtered set
func (s *UserService) CountUsers(plan *query.Plan) (int64, error) {
	total, err := s.userRepo.Count(plan)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

// GetUser returns a single user, optionally projected
func (s *UserService) GetUser(id string, scopes ...func(db *gorm.DB) *gorm.DB) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	user, err := s.userRepo.FindByID(id, scopes...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateUser validates and creates a user. The supplied pendingTasks list is
// stored as-is (deduplicated); task-side assignment only syncs on update.
func (s *UserService) CreateUser(fields UserFields) (*models.User, error) {
	if fields.Name == "" || fields.Email == "" {
		return nil, ErrUserFieldsMissing
	}

	inUse, err := s.userRepo.EmailInUse(fields.Email, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if inUse {
		return nil, ErrEmailInUse
	}

	user := &models.User{
		Name:         fields.Name,
		Email:        fields.Email,
		PendingTasks: models.StringList(uniqueStrings(fields.PendingTasks)),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// UpdateUser validates and applies a full user update through the coordinator
func (s *UserService) UpdateUser(id string, fields UserFields) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	if fields.Name == "" || fields.Email == "" {
		return nil, ErrUserFieldsMissing
	}

	inUse, err := s.userRepo.EmailInUse(fields.Email, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if inUse {
		return nil, ErrEmailInUse
	}

	return s.assignments.Rebind(id, fields)
}

// DeleteUser deletes a user through the coordinator
func (s *UserService) DeleteUser(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	return s.assignments.ReleaseOnDelete(id)
}
