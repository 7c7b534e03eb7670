//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/libreo-books/libreo/internal/config"
	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes text through libtesseract via gosseract.
// It requires Tesseract and its headers at build time.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	language      string
	pageSegMode   int
}

// NewTesseractEngine constructs a gosseract-backed engine
func NewTesseractEngine(cfg config.OCR) *TesseractEngine {
	language := cfg.Language
	if language == "" {
		language = "eng"
	}

	return &TesseractEngine{
		clientFactory: gosseract.NewClient,
		language:      language,
		pageSegMode:   cfg.PageSegMode,
	}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image file. A fresh client is used
// per call; gosseract clients are not safe for concurrent use.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if e.pageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.pageSegMode)); err != nil {
			return "", fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
