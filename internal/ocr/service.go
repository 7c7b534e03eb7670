package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEngine wraps every failure to load an image or recognize its text
var ErrEngine = errors.New("ocr engine error")

// Engine recognizes the text in an image file
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Service handles OCR extraction from stored images
type Service struct {
	engine   Engine
	minWidth int
}

// NewService creates a new OCR service backed by engine
func NewService(engine Engine) *Service {
	return &Service{engine: engine}
}

// WithPreprocessing makes the service hand the engine a grayscale copy of
// each image, upscaled to at least minWidth pixels wide.
func (s *Service) WithPreprocessing(minWidth int) *Service {
	s.minWidth = minWidth
	return s
}

// EngineName returns the name of the underlying engine
func (s *Service) EngineName() string {
	return s.engine.Name()
}

// ExtractText runs the engine once on the image at imagePath and returns the
// trimmed text. An image without legible text yields "" and a nil error.
func (s *Service) ExtractText(ctx context.Context, imagePath string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read image for OCR: %w", ErrEngine, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode image: %w", ErrEngine, err)
	}

	slog.Debug("Running OCR", "engine", s.engine.Name(), "path", imagePath, "format", format, "width", cfg.Width, "height", cfg.Height)

	ocrPath := imagePath
	if s.minWidth > 0 {
		ocrPath, err = preprocess(imageData, filepath.Dir(imagePath), s.minWidth)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrEngine, err)
		}
		defer os.Remove(ocrPath)
	}

	text, err := s.engine.Recognize(ctx, ocrPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrEngine, s.engine.Name(), err)
	}

	text = strings.TrimSpace(text)
	slog.Info("Extracted OCR text", "engine", s.engine.Name(), "length", len(text))
	return text, nil
}
