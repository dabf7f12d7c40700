package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Upload      UploadConfig
	Import      ImportConfig
	BatchUpload BatchUploadConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int

	// StatementTimeout bounds every query; 0 leaves the server default.
	StatementTimeout time.Duration
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours int
}

type UploadConfig struct {
	MaxFileSize       int64 // bytes
	AllowedExtensions []string
}

type ImportConfig struct {
	ValidationWorkers          int
	ParallelThreshold          int
	IdempotencyCleanupInterval time.Duration
}

// BatchUploadConfig points at the backend bulk-create endpoint. An empty URL
// means validated batches are stored in Postgres instead.
type BatchUploadConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Enabled reports whether a remote endpoint is configured.
func (b BatchUploadConfig) Enabled() bool {
	return b.URL != ""
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             getEnv("DB_PORT", "5432"),
			User:             getEnv("DB_USER", "roster"),
			Password:         getEnv("DB_PASSWORD", "roster_dev_password"),
			DBName:           getEnv("DB_NAME", "roster_import"),
			SSLMode:          getEnv("DB_SSLMODE", "disable"),
			MaxConns:         int(getIntEnv("DB_MAX_CONNS", 20)),
			MinConns:         getIntEnv("DB_MIN_CONNS", 2),
			StatementTimeout: getDurationEnv("DB_STATEMENT_TIMEOUT", 30*time.Second),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			Issuer:      getEnv("JWT_ISSUER", "workforce-ai"),
			ExpiryHours: getIntEnv("JWT_EXPIRY_HOURS", 24),
		},
		Upload: UploadConfig{
			MaxFileSize:       int64(getIntEnv("UPLOAD_MAX_SIZE_MB", 20)) * 1024 * 1024,
			AllowedExtensions: getListEnv("UPLOAD_ALLOWED_EXTENSIONS", []string{".csv", ".xlsx"}),
		},
		Import: ImportConfig{
			ValidationWorkers:          getIntEnv("IMPORT_VALIDATION_WORKERS", 4),
			ParallelThreshold:          getIntEnv("IMPORT_PARALLEL_THRESHOLD", 5000),
			IdempotencyCleanupInterval: getDurationEnv("IDEMPOTENCY_CLEANUP_INTERVAL", time.Hour),
		},
		BatchUpload: BatchUploadConfig{
			URL:     getEnv("BATCH_UPLOAD_URL", ""),
			Token:   getEnv("BATCH_UPLOAD_TOKEN", ""),
			Timeout: getDurationEnv("BATCH_UPLOAD_TIMEOUT", 60*time.Second),
		},
	}
}

// DSN returns the Postgres connection string.
func (d *DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getListEnv splits a comma-separated value, dropping blank items.
func getListEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
