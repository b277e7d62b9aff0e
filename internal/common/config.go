package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Upload  UploadConfig
	Quality QualityConfig
	OCR     OCRConfig
	LLM     LLMConfig
	Audit   AuditConfig
}

// UploadConfig bounds what the pipeline accepts before gate 0 runs.
type UploadConfig struct {
	MaxFileSizeMB int
	TempDir       string
}

// QualityConfig holds the image quality gate thresholds.
type QualityConfig struct {
	MinOverall     float64
	MinResolution  float64
	MinSharpness   float64
	MinContrast    float64
	MinOrientation float64
	RasterDPI      int
}

// OCRConfig holds OCR-related configuration.
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	PSM           int
	OEM           int
	MinConfidence float64
	Timeout       time.Duration
}

// LLMConfig holds the semantic extractor backend configuration.
type LLMConfig struct {
	BaseURL            string
	Model              string
	Temperature        float32
	MaxTokens          int
	Timeout            time.Duration
	Enabled            bool
	AllowSoftProtected bool
}

// AuditConfig selects where pipeline outcomes are journaled.
type AuditConfig struct {
	Driver string // "sqlite" | "postgres" | ""
	DSN    string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Upload: UploadConfig{
			MaxFileSizeMB: getEnvAsInt("MAX_FILE_SIZE_MB", 10),
			TempDir:       getEnv("UPLOAD_TEMP_DIR", ""),
		},
		Quality: QualityConfig{
			MinOverall:     getEnvAsFloat("MIN_IMAGE_QUALITY_SCORE", 70.0),
			MinResolution:  getEnvAsFloat("MIN_RESOLUTION_SCORE", 50.0),
			MinSharpness:   getEnvAsFloat("MIN_SHARPNESS_SCORE", 45.0),
			MinContrast:    getEnvAsFloat("MIN_CONTRAST_SCORE", 35.0),
			MinOrientation: getEnvAsFloat("MIN_ORIENTATION_SCORE", 90.0),
			RasterDPI:      getEnvAsInt("RASTER_DPI", 300),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "fra"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("TESSERACT_PSM", 6),
			OEM:           getEnvAsInt("TESSERACT_OEM", 3),
			MinConfidence: getEnvAsFloat("MIN_OCR_CONFIDENCE", 70.0),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:            getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:              getEnv("OLLAMA_MODEL", "mistral:7b-instruct-q4_0"),
			Temperature:        getEnvAsFloat32("OLLAMA_TEMPERATURE", 0.1),
			MaxTokens:          getEnvAsInt("OLLAMA_MAX_TOKENS", 200),
			Timeout:            getEnvAsDuration("OLLAMA_TIMEOUT", 180*time.Second),
			Enabled:            getEnvAsBool("LLM_ENABLED", true),
			AllowSoftProtected: getEnvAsBool("LLM_ALLOW_SOFT_PROTECTED", true),
		},
		Audit: AuditConfig{
			Driver: getEnv("AUDIT_DRIVER", ""),
			DSN:    getEnv("AUDIT_DSN", ""),
		},
	}
}

// Helper functions for environment variable parsing.
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
