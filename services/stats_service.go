package services

import (
	"sort"
	"sync"
	"time"

	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
)

type PlatformStats struct {
	TotalMatchings     int64   `json:"total_matchings"`
	ConfirmedMatchings int64   `json:"confirmed_matchings"`
	RefusedMatchings   int64   `json:"refused_matchings"`
	PendingMatchings   int64   `json:"pending_matchings"`
	SuccessRate        float64 `json:"success_rate"`
	AvgDaysToConfirm   float64 `json:"avg_days_to_confirm"`
}

type TutorLeaderboardEntry struct {
	TutorID     uuid.UUID `json:"tutor_id"`
	TutorName   string    `json:"tutor_name"`
	Total       int64     `json:"total"`
	Confirmed   int64     `json:"confirmed"`
	SuccessRate float64   `json:"success_rate"`
}

const statsCacheTTL = 5 * time.Minute

var (
	statsCache     *PlatformStats
	statsCacheTime time.Time
	statsCacheMu   sync.RWMutex
)

// GetPlatformStats serves the dashboard. The read volume is dashboard-driven
// rather than hot-path, so a short-lived cache is enough.
func GetPlatformStats() (*PlatformStats, error) {
	statsCacheMu.RLock()
	if statsCache != nil && time.Since(statsCacheTime) < statsCacheTTL {
		cached := *statsCache
		statsCacheMu.RUnlock()
		return &cached, nil
	}
	statsCacheMu.RUnlock()

	stats, err := computePlatformStats()
	if err != nil {
		return nil, err
	}

	statsCacheMu.Lock()
	statsCache = stats
	statsCacheTime = time.Now()
	statsCacheMu.Unlock()

	snapshot := *stats
	return &snapshot, nil
}

func computePlatformStats() (*PlatformStats, error) {
	var stats PlatformStats

	if err := database.DB.Model(&models.Matching{}).Count(&stats.TotalMatchings).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Matching{}).Where("status = ?", models.MatchingStatusConfirmed).Count(&stats.ConfirmedMatchings).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Matching{}).Where("status = ?", models.MatchingStatusRefused).Count(&stats.RefusedMatchings).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Matching{}).Where("status IN ?", models.ActiveMatchingStatuses).Count(&stats.PendingMatchings).Error; err != nil {
		return nil, err
	}

	if stats.TotalMatchings > 0 {
		stats.SuccessRate = float64(stats.ConfirmedMatchings) / float64(stats.TotalMatchings)
	}

	// Day math in Go rather than SQL so the same query runs on every dialect.
	var confirmed []models.Matching
	if err := database.DB.
		Select("contact_date", "closed_at").
		Where("status = ? AND closed_at IS NOT NULL", models.MatchingStatusConfirmed).
		Find(&confirmed).Error; err != nil {
		return nil, err
	}
	if len(confirmed) > 0 {
		var totalDays float64
		for _, m := range confirmed {
			totalDays += m.ClosedAt.Sub(m.ContactDate).Hours() / 24
		}
		stats.AvgDaysToConfirm = totalDays / float64(len(confirmed))
	}

	return &stats, nil
}

// GetTopTutors ranks tutors by success rate, confirmed count breaking ties.
func GetTopTutors(limit int) ([]TutorLeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []TutorLeaderboardEntry
	err := database.DB.Model(&models.Matching{}).
		Select("tutor_id, tutor_name, COUNT(*) as total, SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END) as confirmed").
		Group("tutor_id, tutor_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].Total > 0 {
			rows[i].SuccessRate = float64(rows[i].Confirmed) / float64(rows[i].Total)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SuccessRate != rows[j].SuccessRate {
			return rows[i].SuccessRate > rows[j].SuccessRate
		}
		return rows[i].Confirmed > rows[j].Confirmed
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
