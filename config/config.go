package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// MinPseudonymSaltLength is the minimum required length for the pseudonym salt in production
	MinPseudonymSaltLength = 16
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	AppURL      string
	// Pseudonymization salt for anonymized audit references
	PseudonymSalt string
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged to console instead of sent
	// Export bundle storage (Cloudflare R2 / S3-compatible)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	// Local fallback directory for export bundles
	ExportDir string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	salt := getEnv("PSEUDONYM_SALT", "")
	ValidatePseudonymSalt(salt, environment)

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "db/privacy.db"),
		Environment:       environment,
		AppURL:            getEnv("APP_URL", "http://localhost:8080"),
		PseudonymSalt:     salt,
		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		EmailFrom:         getEnv("EMAIL_FROM", "privacy@athenaplatform.org"),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "Athena Privacy Team"),
		EmailTestMode:     getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		ExportDir:         getEnv("EXPORT_DIR", "static/exports"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// ValidatePseudonymSalt validates the pseudonym salt meets requirements.
// The salt keeps anonymized audit references from being trivially reversed by
// rainbow tables over known user IDs, so production requires a real one.
func ValidatePseudonymSalt(salt string, environment string) {
	if environment != "production" {
		return
	}
	if len(salt) < MinPseudonymSaltLength {
		log.Fatalf("[CRITICAL] PSEUDONYM_SALT must be at least %d characters in production (current: %d). Generate with: openssl rand -base64 24", MinPseudonymSaltLength, len(salt))
	}
}
