package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ParryPee/EzCensor/constants"
)

// Config holds all application configuration.
type Config struct {
	Oracle    OracleConfig    `yaml:"oracle"`
	OCR       OCRConfig       `yaml:"ocr"`
	Redaction RedactionConfig `yaml:"redaction"`
	Files     FilesConfig     `yaml:"files"`
	DBPath    string          `yaml:"db_path"`
	Debug     bool            `yaml:"debug"`
}

// OracleConfig holds PII-oracle (Ollama) configuration.
type OracleConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	TopP        float32       `yaml:"top_p"`
	Timeout     time.Duration `yaml:"timeout"`
}

// OCRConfig holds OCR-related configuration.
type OCRConfig struct {
	Tesseract     string `yaml:"tesseract"`
	Pdftotext     string `yaml:"pdftotext"`
	Pdftoppm      string `yaml:"pdftoppm"`
	TesseractLang string `yaml:"tesseract_lang"`
	DPI           int    `yaml:"dpi"`
	MaxPages      int    `yaml:"max_pages"`
	TessdataDir   string `yaml:"tessdata_dir"`
}

// RedactionConfig holds redaction decision settings.
type RedactionConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	FillColor           string  `yaml:"fill_color"`
}

// FilesConfig holds file intake and output settings.
type FilesConfig struct {
	MaxFileSizeMB    int      `yaml:"max_file_size_mb"`
	SupportedFormats []string `yaml:"supported_formats"`
	TempDir          string   `yaml:"temp_dir"`
	InboxDir         string   `yaml:"inbox_dir"`
	OutboxDir        string   `yaml:"outbox_dir"`
	Workers          int      `yaml:"workers"`
}

// LoadConfig builds a Config from defaults, an optional YAML file at
// path (missing file is not an error), and environment variable
// overrides, in that order. A file that exists but cannot be read or
// parsed is an error: silently running on defaults would apply the
// wrong threshold and formats.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if uerr := yaml.Unmarshal(b, cfg); uerr != nil {
				return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("parse %s: %v", path, uerr), ErrInvalidInput)
			}
		case !os.IsNotExist(err):
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("read %s: %v", path, err), ErrInvalidInput)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Oracle: OracleConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.2",
			Temperature: 0.1,
			TopP:        0.9,
			Timeout:     90 * time.Second,
		},
		OCR: OCRConfig{
			Tesseract:     "tesseract",
			Pdftotext:     "pdftotext",
			Pdftoppm:      "pdftoppm",
			TesseractLang: "eng",
			DPI:           300,
		},
		Redaction: RedactionConfig{
			ConfidenceThreshold: 0.8,
			FillColor:           "black",
		},
		Files: FilesConfig{
			MaxFileSizeMB:    20,
			SupportedFormats: []string{"txt", "pdf", "jpg", "jpeg", "png", "gif", "bmp"},
			TempDir:          "./temp",
			InboxDir:         "./inbox",
			OutboxDir:        "./outbox",
			Workers:          2,
		},
		DBPath: "./ezcensor.db",
	}
}

func applyEnv(cfg *Config) {
	cfg.Oracle.BaseURL = getEnv("OLLAMA_BASE_URL", cfg.Oracle.BaseURL)
	cfg.Oracle.Model = getEnv("OLLAMA_MODEL", cfg.Oracle.Model)
	cfg.Oracle.Timeout = getEnvAsDuration("OLLAMA_TIMEOUT", cfg.Oracle.Timeout)

	cfg.OCR.Tesseract = getEnv("TESSERACT_BIN", cfg.OCR.Tesseract)
	cfg.OCR.Pdftotext = getEnv("PDFTOTEXT_BIN", cfg.OCR.Pdftotext)
	cfg.OCR.Pdftoppm = getEnv("PDFTOPPM_BIN", cfg.OCR.Pdftoppm)
	cfg.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", cfg.OCR.TessdataDir)
	cfg.OCR.DPI = getEnvAsInt("OCR_DPI", cfg.OCR.DPI)
	cfg.OCR.MaxPages = getEnvAsInt("OCR_MAX_PAGES", cfg.OCR.MaxPages)

	cfg.Redaction.ConfidenceThreshold = getEnvAsFloat64("CONFIDENCE_THRESHOLD", cfg.Redaction.ConfidenceThreshold)
	cfg.Redaction.FillColor = getEnv("REDACTION_COLOR", cfg.Redaction.FillColor)

	cfg.Files.MaxFileSizeMB = getEnvAsInt("MAX_FILE_SIZE_MB", cfg.Files.MaxFileSizeMB)
	if v := os.Getenv("SUPPORTED_FORMATS"); v != "" {
		parts := strings.Split(v, ",")
		formats := make([]string, 0, len(parts))
		for _, p := range parts {
			if ext := constants.NormalizeExt(p); ext != "" {
				formats = append(formats, ext)
			}
		}
		cfg.Files.SupportedFormats = formats
	}
	cfg.Files.TempDir = getEnv("TEMP_DIR", cfg.Files.TempDir)
	cfg.Files.InboxDir = getEnv("INBOX_DIR", cfg.Files.InboxDir)
	cfg.Files.OutboxDir = getEnv("OUTBOX_DIR", cfg.Files.OutboxDir)
	cfg.Files.Workers = getEnvAsInt("WORKERS", cfg.Files.Workers)

	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.Debug = strings.EqualFold(getEnv("DEBUG", ""), "true") || cfg.Debug
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Redaction.ConfidenceThreshold < 0 || c.Redaction.ConfidenceThreshold > 1 {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("confidence threshold %v out of range [0,1]", c.Redaction.ConfidenceThreshold), ErrInvalidInput)
	}
	if c.Files.MaxFileSizeMB <= 0 {
		return NewAppError("CONFIG_ERROR", "max file size must be positive", ErrInvalidInput)
	}
	if len(c.Files.SupportedFormats) == 0 {
		return NewAppError("CONFIG_ERROR", "at least one supported format is required", ErrInvalidInput)
	}
	for _, f := range c.Files.SupportedFormats {
		if constants.MapExtToFormat(f) == "" {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported format %q", f), ErrInvalidInput)
		}
	}
	if c.Oracle.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "oracle base URL is required", ErrInvalidInput)
	}
	if c.Oracle.Model == "" {
		return NewAppError("CONFIG_ERROR", "oracle model is required", ErrInvalidInput)
	}
	return nil
}

// MaxFileSizeBytes returns the intake size cap in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Files.MaxFileSizeMB) * 1024 * 1024
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
