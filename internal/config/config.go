package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	// Database: sqlite (default), postgres or mysql
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	MigrationsPath  string
	TemplatesPath   string
	StaticFilesPath string

	SessionDuration time.Duration
	SessionSecret   string

	// PIN gate: how long a PIN re-verification stays valid in a browser session
	PinGateDuration time.Duration

	// Child sessions are token based and shorter lived than parent sessions
	ChildSessionDuration time.Duration

	AppBaseURL string

	// Amazon SES email delivery (disabled when SESFromEmail is empty)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	AppleClientID        string
	AppleClientSecret    string
	OAuthRedirectBaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:           getEnv("PORT", "8080"),
		DatabaseType:         getEnv("DB_TYPE", "sqlite"),
		DatabasePath:         getEnv("DB_PATH", "./kiddierewards.db"),
		DatabaseURL:          getEnv("DB_URL", ""),
		MigrationsPath:       getEnv("MIGRATIONS_PATH", "./migrations"),
		TemplatesPath:        getEnv("TEMPLATES_PATH", "./internal/templates"),
		StaticFilesPath:      getEnv("STATIC_PATH", "./static"),
		SessionDuration:      getDurationEnv("SESSION_DURATION", 24*time.Hour),
		SessionSecret:        getEnv("SESSION_SECRET", "dev-only-insecure-secret"),
		PinGateDuration:      getDurationEnv("PIN_GATE_DURATION", 30*time.Minute),
		ChildSessionDuration: getDurationEnv("CHILD_SESSION_DURATION", 12*time.Hour),
		AppBaseURL:           getEnv("APP_BASE_URL", "http://localhost:8080"),
		AWSRegion:            getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail:         getEnv("SES_FROM_EMAIL", ""),
		SESFromName:          getEnv("SES_FROM_NAME", "KiddieRewards"),
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		AppleClientID:        getEnv("APPLE_CLIENT_ID", ""),
		AppleClientSecret:    getEnv("APPLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}
