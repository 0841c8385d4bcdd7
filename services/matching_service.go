package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	config "github.com/anjiri1684/tutor_match/configs"
	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// transitionAttempts bounds the internal retry on an optimistic-update loss:
// one fresh read and one more try, then the conflict is surfaced.
const transitionAttempts = 2

// CreateMatching registers a learner's contact request for a tutor. Creation
// is idempotent per pair: if an active matching already exists (in either
// direction) it is returned unchanged and no notification fans out again.
func CreateMatching(learnerID, tutorID uuid.UUID) (*models.Matching, []MatchingEvent, error) {
	if learnerID == tutorID {
		return nil, nil, fmt.Errorf("%w: a user cannot contact themselves", ErrValidation)
	}

	learner, err := GetUser(learnerID)
	if err != nil {
		return nil, nil, err
	}
	tutor, err := GetUser(tutorID)
	if err != nil {
		return nil, nil, err
	}

	var matching models.Matching
	reused := false

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("status IN ?", models.ActiveMatchingStatuses).
			Where("((learner_id = ? AND tutor_id = ?) OR (learner_id = ? AND tutor_id = ?))",
				learnerID, tutorID, tutorID, learnerID).
			First(&matching).Error
		if err == nil {
			reused = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		matching = models.Matching{
			ID:          uuid.New(),
			LearnerID:   learnerID,
			TutorID:     tutorID,
			LearnerName: learner.FullName,
			TutorName:   tutor.FullName,
			Status:      models.MatchingStatusRequested,
			ContactDate: time.Now().UTC(),
		}
		return tx.Create(&matching).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a creation race: the unique index on active pairs kept the
		// store to one row, so reuse whatever the winner inserted.
		err = database.DB.
			Where("status IN ?", models.ActiveMatchingStatuses).
			Where("((learner_id = ? AND tutor_id = ?) OR (learner_id = ? AND tutor_id = ?))",
				learnerID, tutorID, tutorID, learnerID).
			First(&matching).Error
		if err != nil {
			return nil, nil, fmt.Errorf("%w: concurrent matching creation", ErrConcurrencyConflict)
		}
		return &matching, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if reused {
		return &matching, nil, nil
	}

	events := []MatchingEvent{{Kind: EventMatchingRequested, Matching: matching}}
	return &matching, events, nil
}

// AcceptMatching moves a requested matching to open. Only the requested tutor
// may accept, and only from the requested state.
func AcceptMatching(matchingID, tutorID uuid.UUID) (*models.Matching, []MatchingEvent, error) {
	for attempt := 0; attempt < transitionAttempts; attempt++ {
		matching, err := getMatching(matchingID)
		if err != nil {
			return nil, nil, err
		}
		if matching.TutorID != tutorID {
			return nil, nil, fmt.Errorf("%w: only the contacted tutor can accept", ErrForbidden)
		}
		if matching.Status != models.MatchingStatusRequested {
			return nil, nil, fmt.Errorf("%w: cannot accept a matching in status %q", ErrInvalidTransition, matching.Status)
		}

		now := time.Now().UTC()
		advanced, err := advanceMatching(matching.ID, matching.Status, map[string]interface{}{
			"status":       models.MatchingStatusOpen,
			"contact_date": now,
		})
		if err != nil {
			return nil, nil, err
		}
		if !advanced {
			continue
		}

		matching.Status = models.MatchingStatusOpen
		matching.ContactDate = now
		return matching, []MatchingEvent{
			{Kind: EventMatchingAccepted, Matching: *matching},
			{Kind: EventEnsureConversation, Matching: *matching},
		}, nil
	}
	return nil, nil, ErrConcurrencyConflict
}

// RefuseMatching rejects a requested matching. The reason is mandatory and is
// kept on the record as the tutor's feedback so the learner can be told why.
func RefuseMatching(matchingID, tutorID uuid.UUID, reason string) (*models.Matching, []MatchingEvent, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, nil, fmt.Errorf("%w: a refusal reason is required", ErrValidation)
	}

	for attempt := 0; attempt < transitionAttempts; attempt++ {
		matching, err := getMatching(matchingID)
		if err != nil {
			return nil, nil, err
		}
		if matching.TutorID != tutorID {
			return nil, nil, fmt.Errorf("%w: only the contacted tutor can refuse", ErrForbidden)
		}
		if matching.Status != models.MatchingStatusRequested {
			return nil, nil, fmt.Errorf("%w: cannot refuse a matching in status %q", ErrInvalidTransition, matching.Status)
		}

		now := time.Now().UTC()
		advanced, err := advanceMatching(matching.ID, matching.Status, map[string]interface{}{
			"status":         models.MatchingStatusRefused,
			"tutor_feedback": reason,
			"closed_at":      now,
		})
		if err != nil {
			return nil, nil, err
		}
		if !advanced {
			continue
		}

		matching.Status = models.MatchingStatusRefused
		matching.TutorFeedback = &reason
		matching.ClosedAt = &now
		return matching, []MatchingEvent{
			{Kind: EventMatchingRefused, Matching: *matching, Reason: reason},
		}, nil
	}
	return nil, nil, ErrConcurrencyConflict
}

// FollowUpMatching records a party's answer to the "is this still going?"
// check-in on an idle matching. A single party's confirmed answer closes the
// matching as confirmed; its counterpart's flag records agreement if also set
// but does not gate the transition.
func FollowUpMatching(matchingID, userID uuid.UUID, role, decision string) (*models.Matching, []MatchingEvent, error) {
	if role != models.RoleLearner && role != models.RoleTutor {
		return nil, nil, fmt.Errorf("%w: role must be learner or tutor", ErrValidation)
	}

	for attempt := 0; attempt < transitionAttempts; attempt++ {
		matching, err := getMatching(matchingID)
		if err != nil {
			return nil, nil, err
		}
		if role == models.RoleLearner && matching.LearnerID != userID {
			return nil, nil, fmt.Errorf("%w: you are not the learner for this matching", ErrForbidden)
		}
		if role == models.RoleTutor && matching.TutorID != userID {
			return nil, nil, fmt.Errorf("%w: you are not the tutor for this matching", ErrForbidden)
		}
		if matching.IsTerminal() {
			return nil, nil, fmt.Errorf("%w: matching is already closed as %q", ErrInvalidTransition, matching.Status)
		}
		if matching.Status == models.MatchingStatusRequested {
			return nil, nil, fmt.Errorf("%w: the tutor has not accepted this matching yet", ErrInvalidTransition)
		}

		now := time.Now().UTC()
		if now.Sub(matching.ContactDate) < config.IdleTimeout() {
			return nil, nil, fmt.Errorf("%w: this matching is not awaiting a follow-up yet", ErrValidation)
		}

		var updates map[string]interface{}
		var events []MatchingEvent

		switch decision {
		case models.MatchingStatusConfirmed:
			confirmedColumn := "learner_confirmed"
			if role == models.RoleTutor {
				confirmedColumn = "tutor_confirmed"
			}
			updates = map[string]interface{}{
				"status":        models.MatchingStatusConfirmed,
				confirmedColumn: true,
				"closed_at":     now,
			}
		case models.MatchingStatusRefused:
			updates = map[string]interface{}{
				"status":    models.MatchingStatusRefused,
				"closed_at": now,
			}
		case models.MatchingStatusContinued:
			// Still in progress: the idle clock and the reminder budget restart.
			updates = map[string]interface{}{
				"status":           models.MatchingStatusOpen,
				"contact_date":     now,
				"reminder_count":   0,
				"reminder_sent_at": nil,
			}
		default:
			return nil, nil, fmt.Errorf("%w: decision must be confirmed, refused or continued", ErrValidation)
		}

		advanced, err := advanceMatching(matching.ID, matching.Status, updates)
		if err != nil {
			return nil, nil, err
		}
		if !advanced {
			continue
		}

		switch decision {
		case models.MatchingStatusConfirmed:
			matching.Status = models.MatchingStatusConfirmed
			matching.ClosedAt = &now
			if role == models.RoleTutor {
				matching.TutorConfirmed = true
			} else {
				matching.LearnerConfirmed = true
			}
			events = append(events, MatchingEvent{Kind: EventMatchingConfirmed, Matching: *matching})
		case models.MatchingStatusRefused:
			matching.Status = models.MatchingStatusRefused
			matching.ClosedAt = &now
		case models.MatchingStatusContinued:
			matching.Status = models.MatchingStatusOpen
			matching.ContactDate = now
			matching.ReminderCount = 0
			matching.ReminderSentAt = nil
		}
		return matching, events, nil
	}
	return nil, nil, ErrConcurrencyConflict
}

func getMatching(matchingID uuid.UUID) (*models.Matching, error) {
	var matching models.Matching
	if err := database.DB.First(&matching, "id = ?", matchingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: matching %s", ErrNotFound, matchingID)
		}
		return nil, err
	}
	return &matching, nil
}

// advanceMatching applies a transition only if the record still carries the
// status the caller observed. Zero rows affected means another writer got
// there first; the store write is the commit point for every transition.
func advanceMatching(matchingID uuid.UUID, expectedStatus string, updates map[string]interface{}) (bool, error) {
	result := database.DB.Model(&models.Matching{}).
		Where("id = ? AND status = ?", matchingID, expectedStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
