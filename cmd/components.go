package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/libreo-books/libreo/internal/cataloging"
	"github.com/libreo-books/libreo/internal/config"
	"github.com/libreo-books/libreo/internal/gemini"
	"github.com/libreo-books/libreo/internal/images"
	"github.com/libreo-books/libreo/internal/ocr"
	"github.com/libreo-books/libreo/internal/ollama"
	"github.com/libreo-books/libreo/internal/openai"
	"github.com/libreo-books/libreo/internal/pipeline"
	"github.com/libreo-books/libreo/internal/providers"
	"github.com/libreo-books/libreo/internal/storage"
)

type components struct {
	pipeline *pipeline.Pipeline
	records  *storage.RecordStore
	fetcher  *images.Fetcher
}

func newComponents(cfg *config.Config) (*components, error) {
	provider, err := newProvider(cfg.Extraction)
	if err != nil {
		return nil, err
	}

	// keep the interface nil when extraction is disabled
	var metadata pipeline.MetadataExtractor
	if provider != nil {
		metadata = cataloging.NewService(provider, cfg.ModelName(), cfg.Extraction.Temperature)
	}

	engine := ocr.NewTesseractEngine(cfg.OCR)
	records := storage.NewRecordStore(cfg.Storage.RecordsFile)

	var textLog pipeline.TextLogger
	if cfg.Storage.TextLogFile != "" {
		textLog = storage.NewTextLog(textLogPath(cfg.Storage))
	}

	slog.Debug("Components configured",
		"ocr_engine", engine.Name(),
		"provider", cfg.Extraction.Provider,
		"model", cfg.ModelName(),
		"upload_dir", cfg.Storage.UploadDir,
		"records_file", cfg.Storage.RecordsFile)

	fetcher := images.NewFetcher(cfg.HTTP.MaxUploadBytes)
	fetcher.AllowPrivate = cfg.HTTP.AllowPrivateURLs

	return &components{
		pipeline: pipeline.New(
			images.NewStore(cfg.Storage.UploadDir),
			ocr.NewService(engine).WithPreprocessing(cfg.OCR.MinWidth),
			metadata,
			records,
			textLog,
		),
		records: records,
		fetcher: fetcher,
	}, nil
}

// newProvider returns nil when extraction is disabled
func newProvider(cfg config.Extraction) (providers.Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.New(cfg.OllamaURL, cfg.Timeout), nil
	case "openai":
		return openai.New(cfg.OpenAIKey, cfg.OpenAIURL, cfg.Timeout), nil
	case "gemini":
		return gemini.New(cfg.GeminiKey, cfg.Timeout), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// a relative text log name lives inside the upload directory
func textLogPath(cfg config.Storage) string {
	if filepath.IsAbs(cfg.TextLogFile) || filepath.Dir(cfg.TextLogFile) != "." {
		return cfg.TextLogFile
	}
	return filepath.Join(cfg.UploadDir, cfg.TextLogFile)
}
