package models

import (
	"time"

	"github.com/google/uuid"
)

// Tutor is the profile aggregate owned by the surrounding application.
// The reputation service reads AvgRating and TotalStudents from here; the
// matching engine bumps TotalStudents when a matching is first confirmed.
type Tutor struct {
	UserID        uuid.UUID `gorm:"primary_key" json:"user_id"`
	Headline      *string   `gorm:"size:255" json:"headline"`
	AvgRating     float64   `gorm:"default:0" json:"avg_rating"`
	TotalStudents int       `gorm:"default:0" json:"total_students"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
