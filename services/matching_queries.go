package services

import (
	"fmt"
	"time"

	config "github.com/anjiri1684/tutor_match/configs"
	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
)

func roleColumn(role string) (string, error) {
	switch role {
	case models.RoleLearner:
		return "learner_id", nil
	case models.RoleTutor:
		return "tutor_id", nil
	default:
		return "", fmt.Errorf("%w: role must be learner or tutor", ErrValidation)
	}
}

// GetActiveMatchingsForUser lists the caller's matchings that are not yet
// closed, newest waiting period first.
func GetActiveMatchingsForUser(userID uuid.UUID, role string) ([]models.Matching, error) {
	column, err := roleColumn(role)
	if err != nil {
		return nil, err
	}

	var matchings []models.Matching
	err = database.DB.
		Where(column+" = ? AND status IN ?", userID, models.ActiveMatchingStatuses).
		Order("contact_date desc").
		Find(&matchings).Error
	return matchings, err
}

// GetPendingFollowUps lists the caller's matchings that have sat idle past the
// threshold and still await the caller's own outcome declaration.
func GetPendingFollowUps(userID uuid.UUID, role string) ([]models.Matching, error) {
	column, err := roleColumn(role)
	if err != nil {
		return nil, err
	}

	confirmedColumn := "learner_confirmed"
	if role == models.RoleTutor {
		confirmedColumn = "tutor_confirmed"
	}

	idleBefore := time.Now().UTC().Add(-config.IdleTimeout())

	var matchings []models.Matching
	err = database.DB.
		Where(column+" = ?", userID).
		Where("status IN ?", []string{models.MatchingStatusOpen, models.MatchingStatusContinued}).
		Where("contact_date <= ?", idleBefore).
		Where(confirmedColumn+" = ?", false).
		Order("contact_date asc").
		Find(&matchings).Error
	return matchings, err
}
