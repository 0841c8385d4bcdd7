package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleLearner = "learner"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

// User is the read surface of the externally-owned profile directory. The
// matching engine only touches it through the directory service.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'learner'" json:"role"`

	PhotoURL *string `gorm:"size:255" json:"photo_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
