package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Tutor{},
		&models.Matching{},
		&models.MonetizationTransaction{},
		&models.ReputationStats{},
		&models.Conversation{},
	))
	require.NoError(t, database.EnsureIndexes(db))

	database.DB = db
}

func createTestUser(t *testing.T, name, role string) uuid.UUID {
	t.Helper()

	user := models.User{
		ID:       uuid.New(),
		FullName: name,
		Email:    uuid.NewString() + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, database.DB.Create(&user).Error)

	if role == models.RoleTutor {
		require.NoError(t, database.DB.Create(&models.Tutor{UserID: user.ID}).Error)
	}
	return user.ID
}

// ageMatching pushes the waiting period into the past so follow-ups and
// sweeps become applicable.
func ageMatching(t *testing.T, matchingID uuid.UUID, age time.Duration) {
	t.Helper()

	err := database.DB.Model(&models.Matching{}).
		Where("id = ?", matchingID).
		Update("contact_date", time.Now().UTC().Add(-age)).Error
	require.NoError(t, err)
}

func reloadMatching(t *testing.T, matchingID uuid.UUID) models.Matching {
	t.Helper()

	var matching models.Matching
	require.NoError(t, database.DB.First(&matching, "id = ?", matchingID).Error)
	return matching
}
