package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/libreo-books/libreo/internal/models"
)

// Stage is the furthest point a request reached
type Stage string

const (
	StageImageSaved          Stage = "image_saved"
	StageOCRDone             Stage = "ocr_done"
	StageEmptyText           Stage = "empty_text"
	StageStructuredExtracted Stage = "structured_extracted"
	StagePersisted           Stage = "persisted"
)

type (
	ImageSaver interface {
		Save(data []byte, originalFilename string) (string, error)
	}

	TextExtractor interface {
		ExtractText(ctx context.Context, imagePath string) (string, error)
	}

	MetadataExtractor interface {
		ExtractMetadata(ctx context.Context, ocrText string) (models.BookRecord, error)
	}

	RecordAppender interface {
		Append(record models.BookRecord) error
	}

	TextLogger interface {
		Append(filename, text string) error
	}
)

// Upload is an image received from a client
type Upload struct {
	Data     []byte
	Filename string
}

// Result describes how far an upload got. ExtractionErr is set when the
// model step failed; the OCR text is still valid in that case.
type Result struct {
	Stage         Stage
	ImagePath     string
	Text          string
	Record        *models.BookRecord
	ExtractionErr error
	Persisted     bool
}

// Pipeline runs save → OCR → metadata extraction → persistence for one upload
type Pipeline struct {
	images   ImageSaver
	ocr      TextExtractor
	metadata MetadataExtractor
	records  RecordAppender
	textLog  TextLogger
}

// New wires a pipeline. metadata and textLog may be nil to skip those steps.
func New(images ImageSaver, ocr TextExtractor, metadata MetadataExtractor, records RecordAppender, textLog TextLogger) *Pipeline {
	return &Pipeline{
		images:   images,
		ocr:      ocr,
		metadata: metadata,
		records:  records,
		textLog:  textLog,
	}
}

// ExtractionEnabled reports whether a metadata extractor is configured
func (p *Pipeline) ExtractionEnabled() bool {
	return p.metadata != nil
}

// Process runs every stage once. The returned error is non-nil only when
// the image could not be saved or read by OCR; model and persistence
// failures are reported through the Result.
func (p *Pipeline) Process(ctx context.Context, upload Upload) (*Result, error) {
	imagePath, err := p.images.Save(upload.Data, upload.Filename)
	if err != nil {
		return nil, err
	}
	result := &Result{Stage: StageImageSaved, ImagePath: imagePath}

	text, err := p.ocr.ExtractText(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("error processing %s: %w", filepath.Base(imagePath), err)
	}
	result.Stage = StageOCRDone
	result.Text = text

	if text == "" {
		result.Stage = StageEmptyText
		slog.Info("No text detected", "image", filepath.Base(imagePath))
		return result, nil
	}

	if p.textLog != nil {
		if err := p.textLog.Append(filepath.Base(imagePath), text); err != nil {
			slog.Error("Failed to append extracted text", "image", filepath.Base(imagePath), "error", err)
		}
	}

	if p.metadata == nil {
		return result, nil
	}

	record, err := p.metadata.ExtractMetadata(ctx, text)
	if err != nil {
		slog.Error("Failed to extract book metadata", "image", filepath.Base(imagePath), "error", err)
		result.ExtractionErr = err
		return result, nil
	}
	result.Stage = StageStructuredExtracted
	result.Record = &record

	// persistence failures never change the response already computed
	if err := p.records.Append(record); err != nil {
		slog.Error("Failed to persist book record", "image", filepath.Base(imagePath), "error", err)
		return result, nil
	}
	result.Stage = StagePersisted
	result.Persisted = true

	return result, nil
}
