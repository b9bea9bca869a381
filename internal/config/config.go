package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
)

type Config struct {
	Port          string
	DBPath        string
	MigrationsDir string
	TemplatesDir  string
	StaticDir     string
	UploadsDir    string
	SeedFile      string
	CSRFKey       []byte
	SessionKey    []byte
	JWTSecret     []byte
	SessionTTL    time.Duration
	DeliveryFee   money.Amount
	CookieDomain  string
	CookieSecure  bool
	LogLevel      slog.Level
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory when there is one. Variables already set in the
// environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8585"),
		DBPath:        getEnv("DB_PATH", "./olas-kitchen.db"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		TemplatesDir:  getEnv("TEMPLATES_DIR", "templates"),
		StaticDir:     getEnv("STATIC_DIR", "static"),
		UploadsDir:    getEnv("UPLOADS_DIR", "static/uploads"),
		SeedFile:      getEnv("SEED_FILE", ""),
		CookieDomain:  getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")
	cfg.JWTSecret = loadKey("JWT_SECRET")

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL %q", os.Getenv("SESSION_TTL"))
	}
	cfg.SessionTTL = ttl

	fee, err := money.Parse(getEnv("DELIVERY_FEE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_FEE: %w", err)
	}
	cfg.DeliveryFee = fee

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "INFO"))); err != nil {
		slog.Warn("Invalid LOG_LEVEL, using INFO", "LOG_LEVEL", os.Getenv("LOG_LEVEL"))
		cfg.LogLevel = slog.LevelInfo
	}

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}

	return cfg, nil
}

// loadKey decodes a base64 secret of at least 32 bytes. Missing or weak keys
// are replaced by a random one that only lives as long as the process.
func loadKey(name string) []byte {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes recommended). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// generateRandomBytes uses crypto/rand. If that fails the key falls back to a
// clock-derived value that is only good enough to keep a dev server running.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		padded := make([]byte, n)
		copy(padded, fallbackKey)
		return padded
	}
	return b
}
