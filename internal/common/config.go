package common

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration
type Config struct {
	Log         LogConfig
	Database    DatabaseConfig
	Server      ServerConfig
	Blob        BlobConfig
	Structuring StructuringConfig
	LLM         LLMConfig
	Queue       QueueConfig
	Extract     ExtractConfig
	Ingest      IngestConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string `validate:"oneof=postgres sqlite memory"`
	DSN              string `validate:"required_unless=Driver memory"`
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr        string `validate:"required"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimit       int `validate:"min=1"`
	RateWindow      time.Duration
	MaxUploadBytes  int64 `validate:"min=1024"`
}

// BlobConfig holds document blob storage configuration
type BlobConfig struct {
	Backend   string `validate:"oneof=fs minio"`
	Root      string `validate:"required_if=Backend fs"`
	Endpoint  string `validate:"required_if=Backend minio"`
	AccessKey string
	SecretKey string
	Bucket    string `validate:"required_if=Backend minio"`
	UseSSL    bool
}

// StructuringConfig holds the document structuring service configuration
type StructuringConfig struct {
	BaseURL      string
	APIKey       string
	Budget       time.Duration `validate:"min=1m"`
	PollInterval time.Duration `validate:"min=100ms"`
	HTTPTimeout  time.Duration
}

// LLMConfig holds text completion configuration
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// QueueConfig holds processing queue configuration
type QueueConfig struct {
	Workers        int `validate:"min=1"`
	MaxRetries     int `validate:"min=1"`
	BackoffBase    float64
	ProcessTimeout time.Duration
}

// ExtractConfig holds text extraction configuration
type ExtractConfig struct {
	ChunkSize int `validate:"min=256"`
}

// IngestConfig holds filesystem ingestion configuration
type IngestConfig struct {
	WatchDir    string
	Debounce    time.Duration
	InitialScan bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "sqlite"),
			DSN:              getEnv("DB_URL", "labingest.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
			RateLimit:       getEnvAsInt("HTTP_RATE_LIMIT", 120),
			RateWindow:      getEnvAsDuration("HTTP_RATE_WINDOW", time.Minute),
			MaxUploadBytes:  getEnvAsInt64("HTTP_MAX_UPLOAD_BYTES", 32<<20),
		},
		Blob: BlobConfig{
			Backend:   getEnv("BLOB_BACKEND", "fs"),
			Root:      getEnv("BLOB_ROOT", "./data/documents"),
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "lab-documents"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		Structuring: StructuringConfig{
			BaseURL:      getEnv("DOCAI_BASE_URL", ""),
			APIKey:       getEnv("DOCAI_API_KEY", ""),
			Budget:       getEnvAsDuration("DOCAI_BUDGET", 5*time.Minute),
			PollInterval: getEnvAsDuration("DOCAI_POLL_INTERVAL", 3*time.Second),
			HTTPTimeout:  getEnvAsDuration("DOCAI_HTTP_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 3),
			MaxRetries:     getEnvAsInt("QUEUE_MAX_RETRIES", 3),
			BackoffBase:    getEnvAsFloat64("QUEUE_BACKOFF_BASE", 2.0),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", 15*time.Minute),
		},
		Extract: ExtractConfig{
			ChunkSize: getEnvAsInt("EXTRACT_CHUNK_SIZE", 4000),
		},
		Ingest: IngestConfig{
			WatchDir:    getEnv("WATCH_DIR", ""),
			Debounce:    getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
			InitialScan: getEnvAsBool("WATCH_INITIAL_SCAN", true),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return NewAppError(CodeConfig, "invalid configuration", err)
	}
	if c.Queue.BackoffBase < 1 {
		return NewAppError(CodeConfig, "QUEUE_BACKOFF_BASE must be >= 1", ErrInvalidInput)
	}
	return nil
}
