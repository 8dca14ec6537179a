package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Dosada05/chess-tournament/storage"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds the application settings.
type Config struct {
	StoreDriver  string
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	OrganizerUsername     string
	OrganizerPasswordHash string

	CORSAllowedOrigins []string
	LogLevel           slog.Level

	R2 storage.CloudflareR2UploaderConfig
}

// Load reads the configuration from the environment. A .env file, when
// present, is loaded first and never overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	store, err := loadStore()
	if err != nil {
		return nil, err
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := strconv.Atoi(getEnvOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	level, err := parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	r2 := storage.CloudflareR2UploaderConfig{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	if r2.Enabled() && (r2.AccountID == "" || r2.AccessKeyID == "" || r2.SecretAccessKey == "" || r2.BucketName == "" || r2.PublicBaseURL == "") {
		return nil, fmt.Errorf("R2 archiving needs R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME and R2_PUBLIC_BASE_URL")
	}

	cfg := &Config{
		StoreDriver:           store.Driver,
		DatabaseURL:           store.DatabaseURL,
		JWTSecretKey:          jwtKey,
		ServerPort:            port,
		OrganizerUsername:     getEnvOrDefault("ORGANIZER_USERNAME", "organizer"),
		OrganizerPasswordHash: os.Getenv("ORGANIZER_PASSWORD_HASH"),
		CORSAllowedOrigins:    splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:              level,
		R2:                    r2,
	}

	return cfg, nil
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Driver      string
	DatabaseURL string
}

// LoadStore reads only the record store settings.
func LoadStore() (*StoreConfig, error) {
	_ = godotenv.Load()
	return loadStore()
}

func loadStore() (*StoreConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverPostgres))
	if driver != StoreDriverPostgres && driver != StoreDriverMemory {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, driver)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if driver == StoreDriverPostgres && dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	return &StoreConfig{Driver: driver, DatabaseURL: dbURL}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
