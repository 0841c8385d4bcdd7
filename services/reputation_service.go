package services

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const recomputeAttempts = 3

// RecomputeReputation rebuilds a tutor's derived trust metrics from the
// transaction ledger and the profile aggregate, then overwrites the snapshot
// wholesale. Re-running it with unchanged inputs always lands on the same
// values, so retries and concurrent triggers cannot drift.
func RecomputeReputation(tutorID uuid.UUID) (*models.ReputationStats, error) {
	var ledger struct {
		TotalEarnings float64
		LessonCount   int64
	}
	err := database.DB.Model(&models.MonetizationTransaction{}).
		Where("tutor_id = ? AND status = ? AND type = ?",
			tutorID, models.TransactionStatusCompleted, models.TransactionTypeLesson).
		Select("COALESCE(SUM(amount), 0) as total_earnings, COUNT(*) as lesson_count").
		Scan(&ledger).Error
	if err != nil {
		return nil, err
	}

	rating, students, err := GetTutorRatingAndStudentCount(tutorID)
	if err != nil {
		return nil, err
	}

	score := computeTrustScore(ledger.LessonCount, rating, students, ledger.TotalEarnings)

	stats := models.ReputationStats{
		TutorID:               tutorID,
		TotalEarnings:         ledger.TotalEarnings,
		TotalLessonsCompleted: ledger.LessonCount,
		AverageRating:         rating,
		TotalStudents:         students,
		TrustScore:            score,
		VerificationLevel:     verificationLevelForScore(score),
		LastUpdated:           time.Now().UTC(),
	}

	err = database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tutor_id"}},
		UpdateAll: true,
	}).Create(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecomputeReputationWithRetry is the asynchronous trigger path. Stale
// reputation is a correctness defect, so a failed recompute is retried with
// backoff before giving up with a log line; it is never surfaced to the user.
func RecomputeReputationWithRetry(tutorID uuid.UUID) {
	backoff := time.Second
	for attempt := 1; attempt <= recomputeAttempts; attempt++ {
		if _, err := RecomputeReputation(tutorID); err == nil {
			return
		} else if attempt == recomputeAttempts {
			log.Printf("🔥 Reputation recompute for tutor %s failed after %d attempts: %v", tutorID, attempt, err)
			return
		} else {
			log.Printf("Reputation recompute for tutor %s failed (attempt %d): %v", tutorID, attempt, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}
}

// RecomputeAllReputations is the nightly correction batch: transactions can
// complete independently of matching events, so every tutor profile gets
// refreshed on a schedule as well.
func RecomputeAllReputations() {
	log.Println("Running job: RecomputeAllReputations...")

	var tutorIDs []uuid.UUID
	if err := database.DB.Model(&models.Tutor{}).Pluck("user_id", &tutorIDs).Error; err != nil {
		log.Printf("Error listing tutors for reputation batch: %v", err)
		return
	}

	for _, tutorID := range tutorIDs {
		if _, err := RecomputeReputation(tutorID); err != nil {
			log.Printf("🔥 Nightly reputation recompute failed for tutor %s: %v", tutorID, err)
		}
	}
	log.Printf("✅ Recomputed reputation for %d tutor(s).", len(tutorIDs))
}

// GetReputation returns the current snapshot for a tutor, computing one on
// the fly if none has been stored yet.
func GetReputation(tutorID uuid.UUID) (*models.ReputationStats, error) {
	var stats models.ReputationStats
	err := database.DB.First(&stats, "tutor_id = ?", tutorID).Error
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return RecomputeReputation(tutorID)
}

// computeTrustScore maps historical outcomes onto a bounded 0-100 score.
// Each term is clamped independently before summing:
// lessons contribute up to 30 (50 lessons saturates), rating up to 40,
// distinct students up to 20 (20 students saturates), earnings up to 10
// ($5000 saturates).
func computeTrustScore(lessons int64, rating float64, students int, earnings float64) int {
	lessonTerm := math.Min(30, float64(lessons)/50*30)
	ratingTerm := rating / 5 * 40
	studentTerm := math.Min(20, float64(students)/20*20)
	earningsTerm := math.Min(10, earnings/5000*10)
	return int(math.Round(lessonTerm + ratingTerm + studentTerm + earningsTerm))
}

func verificationLevelForScore(score int) string {
	switch {
	case score >= 90:
		return models.VerificationLevelPlatinum
	case score >= 75:
		return models.VerificationLevelGold
	case score >= 60:
		return models.VerificationLevelSilver
	default:
		return models.VerificationLevelBronze
	}
}
