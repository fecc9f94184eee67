package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Storage  StorageConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	DPI           int
	MaxPages      int
}

// LLMConfig holds LLM-related configuration.
// Enabled is the explicit switch for the structured-extraction stage; the
// loader defaults it to "API key present" but the stage only ever sees the
// flag, never the environment.
type LLMConfig struct {
	Enabled       bool
	APIKey        string
	BaseURL       string
	Model         string
	Temperature   float64
	Timeout       time.Duration
	MaxInputChars int
}

// StorageConfig holds file-store and report-output configuration
type StorageConfig struct {
	UploadDir   string
	ReportsDir  string
	MaxUploadMB int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	apiKey := getEnv("OPENAI_API_KEY", "")
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "./invoice_matcher.db"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		LLM: LLMConfig{
			Enabled:       getEnvAsBool("LLM_ENABLED", apiKey != ""),
			APIKey:        apiKey,
			BaseURL:       getEnv("OPENAI_BASE_URL", ""),
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature:   getEnvAsFloat64("OPENAI_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			MaxInputChars: getEnvAsInt("LLM_MAX_INPUT_CHARS", 20000),
		},
		Storage: StorageConfig{
			UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
			ReportsDir:  getEnv("REPORTS_DIR", "./uploads/reports"),
			MaxUploadMB: getEnvAsInt("MAX_UPLOAD_SIZE_MB", 25),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required when LLM_ENABLED=true", ErrInvalidInput)
	}
	if c.Storage.MaxUploadMB <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_SIZE_MB must be positive", ErrInvalidInput)
	}
	return nil
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
