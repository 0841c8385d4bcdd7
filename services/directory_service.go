package services

import (
	"errors"
	"fmt"

	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The user/profile directory is owned by the surrounding application. The
// matching engine goes through these functions only, so swapping the backing
// store for an RPC client later stays a local change.

func GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, err
	}
	return &user, nil
}

func GetTutorRatingAndStudentCount(tutorID uuid.UUID) (float64, int, error) {
	var tutor models.Tutor
	if err := database.DB.First(&tutor, "user_id = ?", tutorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, fmt.Errorf("%w: tutor %s", ErrNotFound, tutorID)
		}
		return 0, 0, err
	}
	return tutor.AvgRating, tutor.TotalStudents, nil
}

func IncrementTutorStudentCount(tutorID uuid.UUID) error {
	result := database.DB.Model(&models.Tutor{}).
		Where("user_id = ?", tutorID).
		Update("total_students", gorm.Expr("total_students + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: tutor %s", ErrNotFound, tutorID)
	}
	return nil
}
