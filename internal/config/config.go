package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type (
	// Config is the explicit configuration handed to every component
	Config struct {
		HTTP       HTTP       `yaml:"http"`
		Log        Log        `yaml:"log"`
		Storage    Storage    `yaml:"storage"`
		OCR        OCR        `yaml:"ocr"`
		Extraction Extraction `yaml:"extraction"`
	}

	// HTTP configures the upload server. AllowPrivateURLs lets URL mode
	// fetch from loopback and private networks.
	HTTP struct {
		Port             string `yaml:"port" env:"PORT"`
		MaxUploadBytes   int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
		AllowPrivateURLs bool   `yaml:"allow_private_urls" env:"ALLOW_PRIVATE_URLS"`
	}

	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	}

	Storage struct {
		UploadDir   string `yaml:"upload_dir" env:"UPLOAD_DIR"`
		RecordsFile string `yaml:"records_file" env:"RECORDS_FILE"`
		TextLogFile string `yaml:"text_log_file" env:"TEXT_LOG_FILE"`
	}

	// OCR configures Tesseract. A positive MinWidth enables grayscale
	// preprocessing and upscales narrower images to that width.
	OCR struct {
		Language    string `yaml:"language" env:"OCR_LANGUAGE"`
		PageSegMode int    `yaml:"page_seg_mode" env:"OCR_PAGE_SEG_MODE"`
		Binary      string `yaml:"binary" env:"TESSERACT_PATH"`
		MinWidth    int    `yaml:"min_width" env:"OCR_MIN_WIDTH"`
	}

	// Extraction configures the language model used for metadata extraction.
	// Provider "none" disables it.
	Extraction struct {
		Provider    string        `yaml:"provider" env:"CATALOGING_PROVIDER"`
		Model       string        `yaml:"model" env:"CATALOGING_MODEL"`
		Temperature float64       `yaml:"temperature" env:"CATALOGING_TEMPERATURE"`
		Timeout     time.Duration `yaml:"timeout" env:"MODEL_TIMEOUT"`
		OllamaURL   string        `yaml:"ollama_url" env:"OLLAMA_URL"`
		OllamaModel string        `yaml:"ollama_model" env:"OLLAMA_MODEL"`
		OpenAIKey   string        `yaml:"-" env:"OPENAI_API_KEY"`
		OpenAIModel string        `yaml:"openai_model" env:"OPENAI_MODEL"`
		OpenAIURL   string        `yaml:"openai_url" env:"OPENAI_BASE_URL"`
		GeminiKey   string        `yaml:"-" env:"GEMINI_API_KEY"`
		GeminiModel string        `yaml:"gemini_model" env:"GEMINI_MODEL"`
	}
)

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		HTTP: HTTP{
			Port:           "5000",
			MaxUploadBytes: 10 * 1024 * 1024,
		},
		Log: Log{
			Level: "info",
		},
		Storage: Storage{
			UploadDir:   "uploads",
			RecordsFile: "records.json",
			TextLogFile: "extracted_text.txt",
		},
		OCR: OCR{
			Language:    "eng",
			PageSegMode: 3,
			Binary:      "tesseract",
		},
		Extraction: Extraction{
			Provider:    "ollama",
			Temperature: 0.1,
			Timeout:     30 * time.Second,
			OllamaURL:   "http://localhost:11434",
			OllamaModel: "llama3",
			OpenAIModel: "gpt-4o-mini",
			GeminiModel: "gemini-1.5-flash",
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (if
// path is non-empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late, mid-request
func (c *Config) Validate() error {
	if c.Storage.UploadDir == "" {
		return errors.New("config error: storage.upload_dir is required")
	}
	if c.Storage.RecordsFile == "" {
		return errors.New("config error: storage.records_file is required")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("config error: http.max_upload_bytes must be positive")
	}
	if c.OCR.MinWidth < 0 {
		return errors.New("config error: ocr.min_width must not be negative")
	}
	if c.Extraction.Timeout <= 0 {
		return errors.New("config error: extraction.timeout must be positive")
	}

	switch c.Extraction.Provider {
	case "ollama", "openai", "gemini", "none":
	default:
		return fmt.Errorf("config error: unsupported extraction provider: %s", c.Extraction.Provider)
	}

	return nil
}

// ModelName resolves the model for the configured provider. An explicit
// Extraction.Model wins over the provider-specific default.
func (c *Config) ModelName() string {
	if c.Extraction.Model != "" {
		return c.Extraction.Model
	}

	switch c.Extraction.Provider {
	case "openai":
		return c.Extraction.OpenAIModel
	case "gemini":
		return c.Extraction.GeminiModel
	case "ollama":
		return c.Extraction.OllamaModel
	default:
		return ""
	}
}
