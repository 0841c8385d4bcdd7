package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMatchingRow(t *testing.T, tutorID uuid.UUID, tutorName, status string, daysToClose int) {
	t.Helper()

	contact := time.Now().UTC().AddDate(0, 0, -30)
	matching := models.Matching{
		ID:          uuid.New(),
		LearnerID:   uuid.New(),
		TutorID:     tutorID,
		LearnerName: "Some Learner",
		TutorName:   tutorName,
		Status:      status,
		ContactDate: contact,
	}
	if status == models.MatchingStatusConfirmed || status == models.MatchingStatusRefused {
		closed := contact.AddDate(0, 0, daysToClose)
		matching.ClosedAt = &closed
	}
	require.NoError(t, database.DB.Create(&matching).Error)
}

func TestComputePlatformStats(t *testing.T) {
	setupTestDB(t)
	tutorID := uuid.New()

	seedMatchingRow(t, tutorID, "Tom", models.MatchingStatusConfirmed, 2)
	seedMatchingRow(t, tutorID, "Tom", models.MatchingStatusConfirmed, 4)
	seedMatchingRow(t, tutorID, "Tom", models.MatchingStatusRefused, 1)
	seedMatchingRow(t, tutorID, "Tom", models.MatchingStatusOpen, 0)

	stats, err := computePlatformStats()
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalMatchings)
	assert.EqualValues(t, 2, stats.ConfirmedMatchings)
	assert.EqualValues(t, 1, stats.RefusedMatchings)
	assert.EqualValues(t, 1, stats.PendingMatchings)
	assert.InDelta(t, 0.5, stats.SuccessRate, 0.001)
	assert.InDelta(t, 3.0, stats.AvgDaysToConfirm, 0.01)
}

func TestComputePlatformStatsEmptyStore(t *testing.T) {
	setupTestDB(t)

	stats, err := computePlatformStats()
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalMatchings)
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.AvgDaysToConfirm)
}

func TestComputePlatformStatsSurfacesStoreErrors(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, database.DB.Migrator().DropTable(&models.Matching{}))

	_, err := computePlatformStats()
	assert.Error(t, err)
}

func TestGetTopTutorsRanking(t *testing.T) {
	setupTestDB(t)
	tutorA := uuid.New()
	tutorB := uuid.New()
	tutorC := uuid.New()

	// A: 2/2 confirmed. B: 3/4 confirmed. C: 3/3 confirmed.
	seedMatchingRow(t, tutorA, "Tutor A", models.MatchingStatusConfirmed, 1)
	seedMatchingRow(t, tutorA, "Tutor A", models.MatchingStatusConfirmed, 1)
	for i := 0; i < 3; i++ {
		seedMatchingRow(t, tutorB, "Tutor B", models.MatchingStatusConfirmed, 1)
		seedMatchingRow(t, tutorC, "Tutor C", models.MatchingStatusConfirmed, 1)
	}
	seedMatchingRow(t, tutorB, "Tutor B", models.MatchingStatusRefused, 1)

	leaderboard, err := GetTopTutors(10)
	require.NoError(t, err)
	require.Len(t, leaderboard, 3)

	// Same success rate: the larger confirmed count wins the tie.
	assert.Equal(t, tutorC, leaderboard[0].TutorID)
	assert.Equal(t, tutorA, leaderboard[1].TutorID)
	assert.Equal(t, tutorB, leaderboard[2].TutorID)
	assert.InDelta(t, 0.75, leaderboard[2].SuccessRate, 0.001)
}

func TestGetTopTutorsHonorsLimit(t *testing.T) {
	setupTestDB(t)

	for i := 0; i < 5; i++ {
		seedMatchingRow(t, uuid.New(), "Tutor", models.MatchingStatusConfirmed, 1)
	}

	leaderboard, err := GetTopTutors(2)
	require.NoError(t, err)
	assert.Len(t, leaderboard, 2)
}
