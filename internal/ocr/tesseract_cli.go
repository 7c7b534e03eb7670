//go:build !ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/libreo-books/libreo/internal/config"
)

// TesseractEngine runs the tesseract command line tool. Build with
// -tags ocr to link libtesseract through gosseract instead.
type TesseractEngine struct {
	binary      string
	language    string
	pageSegMode int
}

// NewTesseractEngine creates an engine that shells out to cfg.Binary
func NewTesseractEngine(cfg config.OCR) *TesseractEngine {
	binary := cfg.Binary
	if binary == "" {
		binary = "tesseract"
	}
	language := cfg.Language
	if language == "" {
		language = "eng"
	}

	return &TesseractEngine{
		binary:      binary,
		language:    language,
		pageSegMode: cfg.PageSegMode,
	}
}

func (e *TesseractEngine) Name() string { return "tesseract-cli" }

// Recognize runs `tesseract <image> stdout` and returns its output
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", e.language}
	if e.pageSegMode > 0 {
		args = append(args, "--psm", strconv.Itoa(e.pageSegMode))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract command failed: %w, output: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
