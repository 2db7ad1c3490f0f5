package config

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	PublicBaseURL   string
}

type UploadConfig struct {
	// Backend selects where validated files end up: "disk" or "s3".
	Backend       string
	Dir           string
	PublicBaseURL string
	MaxUploadMB   int64
}

type Config struct {
	DB_URL      string
	Port        string
	JWTSecret   string
	Environment string
	CorsConfig  cors.Options

	// Recipient resolution chain: per-form address -> DefaultRecipient -> AdminEmail.
	DefaultRecipient string
	AdminEmail       string

	// Bcrypt hash of the admin password for the management API.
	AdminPasswordHash string

	// Lifetime of the anti-forgery token embedded in rendered forms, in hours.
	FormTokenTTLHours int

	SMTP   SMTPConfig
	Upload UploadConfig
	S3     S3Config
}

var Envs = initConfig()

func initConfig() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No", envFile, "file found")
	}

	return Config{
		DB_URL:      getEnv("DB_URL", ""),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "not-so-secret-now-is-it?"),
		Environment: getEnv("ENV", "development"),
		CorsConfig:  CorsConfig(),

		DefaultRecipient:  getEnv("DEFAULT_RECIPIENT_EMAIL", ""),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		FormTokenTTLHours: getEnvInt("FORM_TOKEN_TTL_HOURS", 12),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "no-reply@localhost"),
		},
		Upload: UploadConfig{
			Backend:       getEnv("STORAGE_BACKEND", "disk"),
			Dir:           getEnv("UPLOAD_DIR", "uploads"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
			MaxUploadMB:   int64(getEnvInt("MAX_UPLOAD_MB", 32)),
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("S3_BUCKET_NAME", ""),
			Region:          getEnv("S3_REGION", "auto"),
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		},
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s, using %d", key, fallback)
	}
	return fallback
}

func CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "http://localhost:8080")},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
