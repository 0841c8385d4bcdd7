package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusRefunded  = "refunded"

	TransactionTypeLesson      = "lesson"
	TransactionTypePlatformFee = "platform_fee"
	TransactionTypeBonus       = "bonus"
)

// MonetizationTransaction is an append-only ledger entry. Rows are never
// deleted; a guarded status transition is the only allowed mutation.
type MonetizationTransaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TutorID    uuid.UUID `gorm:"not null;index" json:"tutor_id"`
	LearnerID  uuid.UUID `gorm:"not null" json:"learner_id"`
	MatchingID uuid.UUID `gorm:"not null" json:"matching_id"`
	Amount     float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency   string    `gorm:"size:3;not null" json:"currency"`
	Status     string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Type       string    `gorm:"size:20;not null" json:"type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
