package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/anjiri1684/tutor_match/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func GetPlatformStats(c *fiber.Ctx) error {
	stats, err := services.GetPlatformStats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute platform stats"})
	}
	return c.JSON(stats)
}

func GetTopTutors(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	leaderboard, err := services.GetTopTutors(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute leaderboard"})
	}
	return c.JSON(leaderboard)
}

func GetTutorReputation(c *fiber.Ctx) error {
	tutorID, err := uuid.Parse(c.Params("tutorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	stats, err := services.GetReputation(tutorID)
	if err != nil {
		return matchingErrorResponse(c, err)
	}
	return c.JSON(stats)
}

// ExportMatchingsReport streams the closed matchings of a date range as CSV
// for the back office.
func ExportMatchingsReport(c *fiber.Ctx) error {
	startDate, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	endDate, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be YYYY-MM-DD"})
	}
	endDate = endDate.AddDate(0, 0, 1)

	var matchings []models.Matching
	if err := database.DB.
		Where("closed_at IS NOT NULL AND closed_at >= ? AND closed_at < ?", startDate, endDate).
		Order("closed_at asc").
		Find(&matchings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)
	w.Write([]string{"matching_id", "learner", "tutor", "status", "contact_date", "closed_at", "reminders_sent"})

	for _, m := range matchings {
		w.Write([]string{
			m.ID.String(),
			m.LearnerName,
			m.TutorName,
			m.Status,
			m.ContactDate.Format(time.RFC3339),
			m.ClosedAt.Format(time.RFC3339),
			strconv.Itoa(m.ReminderCount),
		})
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"matchings_%s_to_%s.csv\"", c.Query("start_date"), c.Query("end_date")))
	return c.Send(b.Bytes())
}
