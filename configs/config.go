package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

func ConfigInt(key string, fallback int) int {
	raw := Config(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using default %d", key, raw, fallback)
		return fallback
	}
	return n
}

func ConfigDays(key string, fallbackDays int) time.Duration {
	return time.Duration(ConfigInt(key, fallbackDays)) * 24 * time.Hour
}

// Matching lifecycle thresholds. Each is overridable per environment.

func IdleTimeout() time.Duration {
	return ConfigDays("MATCHING_IDLE_TIMEOUT_DAYS", 7)
}

func ReminderInterval() time.Duration {
	return ConfigDays("MATCHING_REMINDER_INTERVAL_DAYS", 3)
}

func MaxReminders() int {
	return ConfigInt("MATCHING_MAX_REMINDERS", 2)
}

func FinalTimeoutDays() int {
	return ConfigInt("MATCHING_FINAL_TIMEOUT_DAYS", 21)
}

func FinalTimeout() time.Duration {
	return time.Duration(FinalTimeoutDays()) * 24 * time.Hour
}
