package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"anoa.com/eduainexus/pkg/database"
	"anoa.com/eduainexus/pkg/storage"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	Database database.Options
	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	Cloudinary             storage.Options
	CloudinaryUploadFolder string

	JWTSecret string
	JWTTTL    time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string
	TeacherEmails      []string

	GeminiAPIKey         string
	GeminiFastModel      string
	GeminiThinkingModel  string
	GeminiAnalysisModel  string
	GeminiThinkingBudget int32

	RateLimitAI         time.Duration
	ConversationIdleTTL time.Duration
	SweepSchedule       string
	ReindexSchedule     string
	MaxImageBytes       int64
	MaxDocumentBytes    int64
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		Database: database.Options{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "eduai_nexus"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		Cloudinary: storage.Options{
			URL:       os.Getenv("CLOUDINARY_URL"),
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "eduai_nexus"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		FrontendURL:        os.Getenv("FRONTEND_URL"),
		TeacherEmails:      splitList(strings.ToLower(os.Getenv("TEACHER_EMAILS"))),

		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiFastModel:     getEnv("GEMINI_FAST_MODEL", "gemini-flash-lite-latest"),
		GeminiThinkingModel: getEnv("GEMINI_THINKING_MODEL", "gemini-3-pro-preview"),
		GeminiAnalysisModel: getEnv("GEMINI_STRUCTURED_MODEL", "gemini-3-flash-preview"),

		SweepSchedule:   getEnv("CONVERSATION_SWEEP_SCHEDULE", "@every 5m"),
		ReindexSchedule: getEnv("SEARCH_REINDEX_SCHEDULE", "0 3 * * *"),
	}
	cfg.Database.Verbose = cfg.AppEnv == "development"

	var err error
	if cfg.JWTTTL, err = parseMinutes(getEnv("JWT_TTL_MINUTES", "60")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %w", err)
	}
	if cfg.RateLimitAI, err = time.ParseDuration(getEnv("RATE_LIMIT_AI", "3s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_AI: %w", err)
	}
	if cfg.ConversationIdleTTL, err = time.ParseDuration(getEnv("CONVERSATION_IDLE_TTL", "2h")); err != nil {
		return nil, fmt.Errorf("invalid CONVERSATION_IDLE_TTL: %w", err)
	}

	budget, err := strconv.ParseInt(getEnv("GEMINI_THINKING_BUDGET", "2048"), 10, 32)
	if err != nil || budget < 0 {
		return nil, fmt.Errorf("invalid GEMINI_THINKING_BUDGET: %q", os.Getenv("GEMINI_THINKING_BUDGET"))
	}
	cfg.GeminiThinkingBudget = int32(budget)

	if cfg.MaxImageBytes, err = parseBytes(getEnv("MAX_IMAGE_BYTES", "5242880")); err != nil {
		return nil, fmt.Errorf("invalid MAX_IMAGE_BYTES: %w", err)
	}
	if cfg.MaxDocumentBytes, err = parseBytes(getEnv("MAX_DOCUMENT_BYTES", "20971520")); err != nil {
		return nil, fmt.Errorf("invalid MAX_DOCUMENT_BYTES: %w", err)
	}

	return cfg, nil
}

// IdentityConfigured reports whether Google sign-in can be offered.
func (c *Config) IdentityConfigured() bool {
	return c.JWTSecret != "" && c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func (c *Config) IsTeacherEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.TeacherEmails {
		if e == email {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseMinutes(s string) (time.Duration, error) {
	minutes, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", minutes)
	}
	return time.Duration(minutes) * time.Minute, nil
}

func parseBytes(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
