package repository

import (
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/query"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id string, scopes ...func(db *gorm.DB) *gorm.DB) (*models.User, error) {
	var user models.User
	if err := r.db.Scopes(scopes...).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users matching a query plan
func (r *GormUserRepository) List(plan *query.Plan) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.Model(&models.User{}).Scopes(plan.Scope()).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the cardinality of the plan's filtered set
func (r *GormUserRepository) Count(plan *query.Plan) (int64, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Scopes(plan.FilterScope()).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// EmailInUse reports whether another user already holds the email
func (r *GormUserRepository) EmailInUse(email, excludeID string) (bool, error) {
	q := r.db.Model(&models.User{}).Where("email = ?", email)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
