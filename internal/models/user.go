package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string     `gorm:"type:varchar(36);primarykey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PendingTasks StringList `gorm:"type:text" json:"pendingTasks"`
	DateCreated  time.Time  `json:"dateCreated"`
}

// BeforeCreate assigns the user id and creation timestamp.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.DateCreated.IsZero() {
		u.DateCreated = time.Now()
	}
	if u.PendingTasks == nil {
		u.PendingTasks = StringList{}
	}
	return nil
}
