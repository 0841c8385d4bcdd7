package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation records that a channel exists between two users. Message
// transport lives in the chat service; the matching engine only ensures the
// channel exists when a tutor accepts a contact request. UserAID/UserBID are
// stored in normalized order so the pair lookup is unique.
type Conversation struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	UserAID uuid.UUID `gorm:"not null;uniqueIndex:idx_conversation_pair"`
	UserBID uuid.UUID `gorm:"not null;uniqueIndex:idx_conversation_pair"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
