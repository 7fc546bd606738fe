package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnassignedName is the assignedUserName a task carries while no user is assigned.
const UnassignedName = "unassigned"

type Task struct {
	ID               string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name             string    `gorm:"not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Deadline         time.Time `gorm:"not null" json:"deadline"`
	Completed        bool      `gorm:"not null;default:false" json:"completed"`
	AssignedUser     string    `gorm:"type:varchar(36);not null;default:''" json:"assignedUser"`
	AssignedUserName string    `gorm:"type:varchar(255);not null;default:'unassigned'" json:"assignedUserName"`
	DateCreated      time.Time `json:"dateCreated"`
}

// BeforeCreate assigns the task id and creation timestamp.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.DateCreated.IsZero() {
		t.DateCreated = time.Now()
	}
	if t.AssignedUserName == "" {
		t.AssignedUserName = UnassignedName
	}
	return nil
}
