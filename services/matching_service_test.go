package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateMatchingIsIdempotentPerPair(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	first, events, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchingStatusRequested, first.Status)
	assert.Equal(t, "Lena Learner", first.LearnerName)
	assert.Equal(t, "Tom Tutor", first.TutorName)
	assert.Equal(t, 0, first.ReminderCount)
	assert.False(t, first.LearnerConfirmed)
	assert.False(t, first.TutorConfirmed)
	require.Len(t, events, 1)
	assert.Equal(t, EventMatchingRequested, events[0].Kind)

	second, events, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, events, "a reused matching must not fan out notifications again")

	var count int64
	database.DB.Model(&models.Matching{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateMatchingAllowsNewRequestAfterClosure(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	first, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	_, _, err = RefuseMatching(first.ID, tutorID, "fully booked this term")
	require.NoError(t, err)

	second, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestActivePairIndexBlocksSecondActiveMatching(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	first, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)

	// A second writer that slipped past the read-before-create must be
	// rejected by the store, not just by the service-level lookup.
	dup := models.Matching{
		ID:          uuid.New(),
		LearnerID:   learnerID,
		TutorID:     tutorID,
		LearnerName: "Lena Learner",
		TutorName:   "Tom Tutor",
		Status:      models.MatchingStatusRequested,
		ContactDate: time.Now().UTC(),
	}
	err = database.DB.Create(&dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Closed rows are outside the index, so a fresh request still works.
	_, _, err = RefuseMatching(first.ID, tutorID, "fully booked this term")
	require.NoError(t, err)
	require.NoError(t, database.DB.Create(&dup).Error)
}

func TestCreateMatchingRejectsUnknownUsers(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	_, _, err := CreateMatching(learnerID, learnerID)
	assert.ErrorIs(t, err, ErrValidation)

	ghost := createTestUser(t, "Ghost", models.RoleTutor)
	require.NoError(t, database.DB.Delete(&models.User{}, "id = ?", ghost).Error)
	_, _, err = CreateMatching(learnerID, ghost)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = CreateMatching(ghost, tutorID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptMatchingOpensAndResetsClock(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	matching, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	ageMatching(t, matching.ID, 48*time.Hour)

	accepted, events, err := AcceptMatching(matching.ID, tutorID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchingStatusOpen, accepted.Status)
	assert.WithinDuration(t, time.Now().UTC(), accepted.ContactDate, 5*time.Second)

	require.Len(t, events, 2)
	kinds := []MatchingEventKind{events[0].Kind, events[1].Kind}
	assert.Contains(t, kinds, EventMatchingAccepted)
	assert.Contains(t, kinds, EventEnsureConversation)

	_, _, err = AcceptMatching(matching.ID, tutorID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAcceptMatchingRequiresTheContactedTutor(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)
	otherTutorID := createTestUser(t, "Other Tutor", models.RoleTutor)

	matching, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)

	_, _, err = AcceptMatching(matching.ID, otherTutorID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRefuseMatchingRequiresAReason(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	matching, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)

	_, _, err = RefuseMatching(matching.ID, tutorID, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = RefuseMatching(matching.ID, tutorID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	refused, events, err := RefuseMatching(matching.ID, tutorID, "busy")
	require.NoError(t, err)
	assert.Equal(t, models.MatchingStatusRefused, refused.Status)
	require.NotNil(t, refused.TutorFeedback)
	assert.Equal(t, "busy", *refused.TutorFeedback)
	assert.NotNil(t, refused.ClosedAt)
	require.Len(t, events, 1)
	assert.Equal(t, EventMatchingRefused, events[0].Kind)
	assert.Equal(t, "busy", events[0].Reason)
}

func TestFollowUpConfirmedClosesTheLoop(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	matching, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	_, _, err = AcceptMatching(matching.ID, tutorID)
	require.NoError(t, err)
	ageMatching(t, matching.ID, 8*24*time.Hour)

	confirmed, events, err := FollowUpMatching(matching.ID, learnerID, models.RoleLearner, models.MatchingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.MatchingStatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.LearnerConfirmed)
	assert.False(t, confirmed.TutorConfirmed, "a single party's declaration closes the matching")
	assert.NotNil(t, confirmed.ClosedAt)
	require.Len(t, events, 1)
	assert.Equal(t, EventMatchingConfirmed, events[0].Kind)

	stored := reloadMatching(t, matching.ID)
	assert.Equal(t, models.MatchingStatusConfirmed, stored.Status)
	assert.True(t, stored.LearnerConfirmed)
}

func TestFollowUpContinuedRestartsTheIdleClock(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	matching, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	_, _, err = AcceptMatching(matching.ID, tutorID)
	require.NoError(t, err)
	ageMatching(t, matching.ID, 10*24*time.Hour)

	sentAt := time.Now().UTC().Add(-24 * time.Hour)
	require.NoError(t, database.DB.Model(&models.Matching{}).
		Where("id = ?", matching.ID).
		Updates(map[string]interface{}{"reminder_count": 1, "reminder_sent_at": sentAt}).Error)

	continued, events, err := FollowUpMatching(matching.ID, tutorID, models.RoleTutor, models.MatchingStatusContinued)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, models.MatchingStatusOpen, continued.Status)
	assert.WithinDuration(t, time.Now().UTC(), continued.ContactDate, 5*time.Second)

	stored := reloadMatching(t, matching.ID)
	assert.Equal(t, 0, stored.ReminderCount)
	assert.Nil(t, stored.ReminderSentAt)
}

func TestFollowUpBeforeIdleThresholdIsRejected(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	matching, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	_, _, err = AcceptMatching(matching.ID, tutorID)
	require.NoError(t, err)

	_, _, err = FollowUpMatching(matching.ID, learnerID, models.RoleLearner, models.MatchingStatusConfirmed)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFollowUpOnRequestedMatchingIsRejected(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	matching, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	ageMatching(t, matching.ID, 8*24*time.Hour)

	_, _, err = FollowUpMatching(matching.ID, learnerID, models.RoleLearner, models.MatchingStatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTerminalMatchingsRejectEveryTransition(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	matching, _, err := CreateMatching(learnerID, tutorID)
	require.NoError(t, err)
	_, _, err = RefuseMatching(matching.ID, tutorID, "not taking new learners")
	require.NoError(t, err)

	_, _, err = AcceptMatching(matching.ID, tutorID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, _, err = RefuseMatching(matching.ID, tutorID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, _, err = FollowUpMatching(matching.ID, learnerID, models.RoleLearner, models.MatchingStatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, _, err = FollowUpMatching(matching.ID, tutorID, models.RoleTutor, models.MatchingStatusContinued)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUnknownMatchingIsNotFound(t *testing.T) {
	setupTestDB(t)
	tutorID := createTestUser(t, "Tom Tutor", models.RoleTutor)

	_, _, err := AcceptMatching(uuid.New(), tutorID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetActiveMatchingsForUser(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorA := createTestUser(t, "Tutor A", models.RoleTutor)
	tutorB := createTestUser(t, "Tutor B", models.RoleTutor)

	open, _, err := CreateMatching(learnerID, tutorA)
	require.NoError(t, err)
	closedMatching, _, err := CreateMatching(learnerID, tutorB)
	require.NoError(t, err)
	_, _, err = RefuseMatching(closedMatching.ID, tutorB, "schedule clash")
	require.NoError(t, err)

	active, err := GetActiveMatchingsForUser(learnerID, models.RoleLearner)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, open.ID, active[0].ID)

	forTutor, err := GetActiveMatchingsForUser(tutorA, models.RoleTutor)
	require.NoError(t, err)
	assert.Len(t, forTutor, 1)

	_, err = GetActiveMatchingsForUser(learnerID, "admin")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetPendingFollowUps(t *testing.T) {
	setupTestDB(t)
	learnerID := createTestUser(t, "Lena Learner", models.RoleLearner)
	tutorA := createTestUser(t, "Tutor A", models.RoleTutor)
	tutorB := createTestUser(t, "Tutor B", models.RoleTutor)

	idle, _, err := CreateMatching(learnerID, tutorA)
	require.NoError(t, err)
	_, _, err = AcceptMatching(idle.ID, tutorA)
	require.NoError(t, err)
	ageMatching(t, idle.ID, 8*24*time.Hour)

	fresh, _, err := CreateMatching(learnerID, tutorB)
	require.NoError(t, err)
	_, _, err = AcceptMatching(fresh.ID, tutorB)
	require.NoError(t, err)

	pending, err := GetPendingFollowUps(learnerID, models.RoleLearner)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, idle.ID, pending[0].ID)

	tutorPending, err := GetPendingFollowUps(tutorA, models.RoleTutor)
	require.NoError(t, err)
	assert.Len(t, tutorPending, 1)
}
