package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smartsniper31/network-guardian/internal/models"
)

// Load returns the server configuration from environment variables.
func Load() models.Config {
	return models.Config{
		Port:            getEnv("PORT", "9080"),
		DBPath:          getEnv("DB_PATH", "guardian.db"),
		AnalyzerURL:     getEnv("ANALYZER_URL", ""),
		AnalyzerTimeout: getDuration("ANALYZER_TIMEOUT_SECONDS", 30*time.Second),
		ScanTimeout:     getDuration("SCAN_TIMEOUT_SECONDS", 120*time.Second),
		SessionTTL:      getDuration("SESSION_TTL_SECONDS", 7*24*time.Hour),
		NotifyURLs:      getList("NOTIFY_URLS"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// getList parses a comma-separated environment variable.
func getList(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
