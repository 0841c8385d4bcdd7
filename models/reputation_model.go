package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	VerificationLevelBronze   = "bronze"
	VerificationLevelSilver   = "silver"
	VerificationLevelGold     = "gold"
	VerificationLevelPlatinum = "platinum"
)

// ReputationStats is a derived snapshot per tutor. It is fully recomputable
// from the transaction ledger and the tutor profile and is only ever written
// as a whole by the reputation service.
type ReputationStats struct {
	TutorID               uuid.UUID `gorm:"type:uuid;primary_key" json:"tutor_id"`
	TotalEarnings         float64   `gorm:"type:numeric(12,2);default:0.00" json:"total_earnings"`
	TotalLessonsCompleted int64     `gorm:"default:0" json:"total_lessons_completed"`
	AverageRating         float64   `gorm:"default:0" json:"average_rating"`
	TotalStudents         int       `gorm:"default:0" json:"total_students"`
	TrustScore            int       `gorm:"default:0" json:"trust_score"`
	VerificationLevel     string    `gorm:"size:20;not null;default:'bronze'" json:"verification_level"`
	LastUpdated           time.Time `json:"last_updated"`
}
