package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MatchingStatusRequested = "requested"
	MatchingStatusOpen      = "open"
	MatchingStatusContinued = "continued"
	MatchingStatusConfirmed = "confirmed"
	MatchingStatusRefused   = "refused"
)

// ActiveMatchingStatuses are the non-terminal states. At most one matching
// with one of these statuses may exist per learner/tutor pair.
var ActiveMatchingStatuses = []string{
	MatchingStatusRequested,
	MatchingStatusOpen,
	MatchingStatusContinued,
}

type Matching struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LearnerID uuid.UUID `gorm:"not null;index" json:"learner_id"`
	TutorID   uuid.UUID `gorm:"not null;index" json:"tutor_id"`

	// Display names snapshotted at creation so history survives profile edits.
	LearnerName string `gorm:"size:255;not null" json:"learner_name"`
	TutorName   string `gorm:"size:255;not null" json:"tutor_name"`

	Status      string    `gorm:"size:20;not null;default:'requested'" json:"status"`
	ContactDate time.Time `gorm:"not null" json:"contact_date"`

	LearnerConfirmed bool `gorm:"default:false" json:"learner_confirmed"`
	TutorConfirmed   bool `gorm:"default:false" json:"tutor_confirmed"`

	LearnerFeedback *string `gorm:"type:text" json:"learner_feedback"`
	TutorFeedback   *string `gorm:"type:text" json:"tutor_feedback"`

	ReminderCount  int        `gorm:"default:0" json:"reminder_count"`
	ReminderSentAt *time.Time `json:"reminder_sent_at"`
	ClosedAt       *time.Time `json:"closed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Matching) IsTerminal() bool {
	return m.Status == MatchingStatusConfirmed || m.Status == MatchingStatusRefused
}
