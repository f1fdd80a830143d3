package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"docextract/internal/apperr"
)

const (
	DefaultPort           = 9000
	DefaultMaxUploadBytes = 16 * 1024 * 1024
	DefaultModel          = "gemini-1.5-flash"
	APIKeyEnv             = "GEMINI_API_KEY"
)

// Config holds all application configuration
type Config struct {
	Env        string
	Server     ServerConfig
	Upload     UploadConfig
	Gemini     GeminiConfig
	Credential CredentialConfig
	Cache      CacheConfig
	Audit      AuditConfig
	Admin      AdminConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type UploadConfig struct {
	AllowedExtensions []string
	MaxBytes          int64
}

type GeminiConfig struct {
	Model   string
	Timeout time.Duration
}

// CredentialConfig locates the persisted API key.
type CredentialConfig struct {
	EnvFile  string
	Key      string
	Override string
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

type AuditConfig struct {
	DSN string
}

type AdminConfig struct {
	JWTSecret string
}

type LogConfig struct {
	Level       string
	File        string
	Development bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	env := getEnv("APP_ENV", "development")
	return &Config{
		Env: env,
		Server: ServerConfig{
			Port:            getEnvAsInt("PORT", getEnvAsInt("FLASK_PORT", DefaultPort)),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Upload: UploadConfig{
			AllowedExtensions: getEnvAsList("ALLOWED_EXTENSIONS", []string{"png", "jpg", "jpeg"}),
			MaxBytes:          getEnvAsInt64("MAX_CONTENT_LENGTH", DefaultMaxUploadBytes),
		},
		Gemini: GeminiConfig{
			Model:   getEnv("GEMINI_MODEL", DefaultModel),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		Credential: CredentialConfig{
			EnvFile:  getEnv("ENV_FILE", ".env"),
			Key:      APIKeyEnv,
			Override: strings.TrimSpace(os.Getenv(APIKeyEnv)),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getEnvAsDuration("CACHE_TTL", 24*time.Hour),
		},
		Audit: AuditConfig{
			DSN: getEnv("DB_URL", ""),
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			File:        getEnv("LOG_FILE", "app.log"),
			Development: env != "production",
		},
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Server.Port)
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperr.Configuration(fmt.Sprintf("PORT %d is out of range", c.Server.Port))
	}
	if c.Upload.MaxBytes <= 0 {
		return apperr.Configuration("MAX_CONTENT_LENGTH must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return apperr.Configuration("ALLOWED_EXTENSIONS must list at least one extension")
	}
	if c.Gemini.Model == "" {
		return apperr.Configuration("GEMINI_MODEL is required")
	}
	if c.Credential.EnvFile == "" {
		return apperr.Configuration("ENV_FILE is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList reads a comma separated list, lowercased, with leading dots dropped.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		p := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
