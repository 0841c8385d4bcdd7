package jobs

import (
	"fmt"
	"log"
	"time"

	config "github.com/anjiri1684/tutor_match/configs"
	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/anjiri1684/tutor_match/notifications"
)

// The sweeps take "now" explicitly so they are plain functions over the store
// and a clock value. The cron entries in main call the no-argument wrappers.

func RunReminderSweep() {
	log.Println("Running job: RunReminderSweep...")
	if err := RunReminderPass(time.Now().UTC()); err != nil {
		log.Printf("Error running reminder pass: %v", err)
	}
}

func RunExpirySweep() {
	log.Println("Running job: RunExpirySweep...")
	if err := RunExpiryPass(time.Now().UTC()); err != nil {
		log.Printf("Error running expiry pass: %v", err)
	}
}

// RunReminderPass nudges both parties of matchings that have sat idle past
// the threshold. The counter bump is the commit point: it lands before the
// email goes out, so a crash in between skips one notification instead of
// retrying forever, and a concurrent sweep loses the conditional update and
// sends nothing.
func RunReminderPass(now time.Time) error {
	idleBefore := now.Add(-config.IdleTimeout())
	resendBefore := now.Add(-config.ReminderInterval())
	maxReminders := config.MaxReminders()

	var due []models.Matching
	err := database.DB.
		Where("status IN ?", []string{models.MatchingStatusOpen, models.MatchingStatusContinued}).
		Where("contact_date <= ?", idleBefore).
		Where("reminder_count < ?", maxReminders).
		Where("(reminder_sent_at IS NULL OR reminder_sent_at <= ?)", resendBefore).
		Find(&due).Error
	if err != nil {
		return err
	}

	if len(due) == 0 {
		return nil
	}

	reminded := 0
	for _, matching := range due {
		result := database.DB.Model(&models.Matching{}).
			Where("id = ? AND status = ? AND reminder_count = ?",
				matching.ID, matching.Status, matching.ReminderCount).
			Updates(map[string]interface{}{
				"reminder_count":   matching.ReminderCount + 1,
				"reminder_sent_at": now,
			})
		if result.Error != nil {
			log.Printf("Error stamping reminder for matching %s: %v", matching.ID, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			// Another sweep or a follow-up got there first.
			continue
		}

		reminded++
		go notifications.SendFollowUpReminder(matching)
	}

	log.Printf("✅ Reminder pass sent %d reminder(s).", reminded)
	return nil
}

// RunExpiryPass force-closes matchings nobody answered for. This is a system
// transition, one-way and distinct from a user refusal; the feedback text
// tells the parties what happened.
func RunExpiryPass(now time.Time) error {
	cutoff := now.Add(-config.FinalTimeout())

	var expired []models.Matching
	err := database.DB.
		Where("status = ?", models.MatchingStatusOpen).
		Where("contact_date <= ?", cutoff).
		Find(&expired).Error
	if err != nil {
		return err
	}

	if len(expired) == 0 {
		log.Println("No matchings to expire.")
		return nil
	}

	feedback := fmt.Sprintf("Auto-closed — no response after %d days", config.FinalTimeoutDays())

	closed := 0
	for _, matching := range expired {
		result := database.DB.Model(&models.Matching{}).
			Where("id = ? AND status = ?", matching.ID, models.MatchingStatusOpen).
			Updates(map[string]interface{}{
				"status":         models.MatchingStatusRefused,
				"tutor_feedback": feedback,
				"closed_at":      now,
			})
		if result.Error != nil {
			log.Printf("Error expiring matching %s: %v", matching.ID, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			closed++
		}
	}

	log.Printf("✅ Expiry pass closed %d matching(s).", closed)
	return nil
}
