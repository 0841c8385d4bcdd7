package services

import (
	"errors"

	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrCreateConversation returns the channel between two users, creating it
// on first use. The pair is normalized before the lookup so the operation is
// idempotent regardless of argument order, and the unique index on the pair
// keeps a concurrent double-create down to one row.
func GetOrCreateConversation(userA, userB uuid.UUID) (uuid.UUID, error) {
	if userA == userB {
		return uuid.Nil, errors.New("a conversation needs two distinct participants")
	}
	if userB.String() < userA.String() {
		userA, userB = userB, userA
	}

	var conversation models.Conversation
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_a_id = ? AND user_b_id = ?", userA, userB).First(&conversation).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		conversation = models.Conversation{ID: uuid.New(), UserAID: userA, UserBID: userB}
		return tx.Create(&conversation).Error
	})
	if err != nil {
		return uuid.Nil, err
	}
	return conversation.ID, nil
}
