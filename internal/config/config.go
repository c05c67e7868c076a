package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Report aggregation
	ApprovalThreshold int

	// Redis (approved-URL cache); empty disables caching
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Moderation alerts (SendGrid); empty API key disables delivery
	SendGridAPIKey string
	AlertFromEmail string
	AlertToEmail   string
	EmailSandbox   bool

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "urlsentry"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		ApprovalThreshold: parseInt(getEnv("REPORT_APPROVAL_THRESHOLD", "5"), 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      parseDuration(getEnv("CACHE_TTL", "5m")),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		AlertFromEmail: getEnv("ALERT_FROM_EMAIL", "noreply@urlsentry.io"),
		AlertToEmail:   getEnv("ALERT_TO_EMAIL", ""),
		EmailSandbox:   getEnv("EMAIL_SANDBOX", "") == "true",

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
