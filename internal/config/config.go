package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	ListenAddr             string
	DatabaseURL            string
	RedisAddr              string
	JWTSecret              string
	JWTIssuer              string
	AccessTTLSeconds       int64
	RefreshTTLSeconds      int64
	SnapshotRefreshSeconds int
	LoginAttemptLimit      int
	LoginAttemptWindowSecs int
	HealthDiskPath         string
	CorsOrigins            []string

	// Opaque connection parameters for the hosted collaborators. Passed
	// through at startup and never interpreted by the core.
	APIKey        string
	ProjectID     string
	AuthDomain    string
	StorageBucket string
}

func Load() Config {
	return Config{
		ListenAddr:             envOr("LISTEN_ADDR", ":8080"),
		DatabaseURL:            mustEnv("DATABASE_URL"),
		RedisAddr:              envOr("REDIS_ADDR", ""),
		JWTSecret:              mustEnv("JWT_SECRET"),
		JWTIssuer:              envOr("JWT_ISSUER", "simahasiswa"),
		AccessTTLSeconds:       int64(envOrInt("ACCESS_TTL_SECONDS", 14400)),
		RefreshTTLSeconds:      int64(envOrInt("REFRESH_TTL_SECONDS", 1209600)),
		SnapshotRefreshSeconds: envOrInt("SNAPSHOT_REFRESH_SECONDS", 0),
		LoginAttemptLimit:      envOrInt("LOGIN_ATTEMPT_LIMIT", 10),
		LoginAttemptWindowSecs: envOrInt("LOGIN_ATTEMPT_WINDOW_SECONDS", 300),
		HealthDiskPath:         envOr("HEALTH_DISK_PATH", "/"),
		CorsOrigins:            parseCSV(envOr("CORS_ORIGINS", "")),
		APIKey:                 envOr("API_KEY", ""),
		ProjectID:              envOr("PROJECT_ID", ""),
		AuthDomain:             envOr("AUTH_DOMAIN", ""),
		StorageBucket:          envOr("STORAGE_BUCKET", ""),
	}
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
