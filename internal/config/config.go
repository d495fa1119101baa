// Package config loads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds all server settings in their final types.
type Config struct {
	Port              string
	AllowedOrigins    []string
	DownloadDir       string
	TempDir           string
	AuditLogPath      string
	MaxConcurrentJobs int
	RetentionWindow   time.Duration
	TempRetention     time.Duration
	SweepInterval     time.Duration
	MaxArtifactBytes  int64
	// DownloadTimeout is the per-job watchdog; 0 disables it.
	DownloadTimeout time.Duration
	SubmitPerMinute int
}

// Load reads the environment and returns validated settings.
func Load() *Config {
	cfg := &Config{
		Port:              getEnv("PORT", ":8080"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		DownloadDir:       getEnv("DOWNLOAD_DIR", "downloads"),
		TempDir:           getEnv("TEMP_DIR", "temp"),
		AuditLogPath:      getEnv("AUDIT_LOG", "logs/downloads.jsonl"),
		MaxConcurrentJobs: getEnvAsInt("MAX_CONCURRENT_JOBS", 3),
		RetentionWindow:   time.Duration(getEnvAsInt("RETENTION_HOURS", 24)) * time.Hour,
		TempRetention:     time.Duration(getEnvAsInt("TEMP_RETENTION_MINUTES", 60)) * time.Minute,
		SweepInterval:     time.Duration(getEnvAsInt("SWEEP_INTERVAL_MINUTES", 60)) * time.Minute,
		MaxArtifactBytes:  int64(getEnvAsInt("MAX_ARTIFACT_MB", 500)) << 20,
		DownloadTimeout:   time.Duration(getEnvAsInt("DOWNLOAD_TIMEOUT_MINUTES", 30)) * time.Minute,
		SubmitPerMinute:   getEnvAsInt("SUBMIT_RATE_PER_MINUTE", 5),
	}
	validate(cfg)
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if val, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validate keeps the server from starting with settings it cannot run
// under.
func validate(cfg *Config) {
	if cfg.MaxConcurrentJobs < 1 {
		logrus.Warn("MAX_CONCURRENT_JOBS must be at least 1, resetting to 3")
		cfg.MaxConcurrentJobs = 3
	}
	if cfg.SweepInterval < time.Minute {
		logrus.Warn("SWEEP_INTERVAL_MINUTES must be at least 1, resetting to 60")
		cfg.SweepInterval = time.Hour
	}
	if cfg.SubmitPerMinute < 1 {
		cfg.SubmitPerMinute = 5
	}
	if !strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
}
