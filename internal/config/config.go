package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the server.
type Config struct {
	Port               string
	DBPath             string
	StorageDir         string
	TrialDays          int
	TrialSweepInterval time.Duration
}

// Load reads configuration from a .env file (if present) and the
// environment, falling back to development defaults.
func Load() *Config {
	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8008"),
		DBPath:             getEnv("DB_PATH", "taskflow.db"),
		StorageDir:         getEnv("STORAGE_DIR", "task_attachments"),
		TrialDays:          getEnvInt("TRIAL_DAYS", 7),
		TrialSweepInterval: getEnvDuration("TRIAL_SWEEP_INTERVAL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
