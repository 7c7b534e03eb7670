package cataloging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/libreo-books/libreo/internal/models"
	"github.com/libreo-books/libreo/internal/providers"
)

var (
	// ErrModelUnavailable means the model could not be reached or refused the request
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrModelResponseFormat means the model answered with something that is
	// not a book record
	ErrModelResponseFormat = errors.New("model response format error")
)

// Service extracts bibliographic metadata from OCR text with an LLM
type Service struct {
	provider    providers.Provider
	model       string
	temperature float64
}

// NewService creates a metadata extractor that calls provider with model
func NewService(provider providers.Provider, model string, temperature float64) *Service {
	return &Service{
		provider:    provider,
		model:       model,
		temperature: temperature,
	}
}

// ExtractMetadata sends ocrText to the model once and parses the answer
// into a BookRecord.
func (s *Service) ExtractMetadata(ctx context.Context, ocrText string) (models.BookRecord, error) {
	raw, err := s.provider.Generate(ctx, providers.Config{
		Model:       s.model,
		Temperature: s.temperature,
		Prompt:      buildMetadataPrompt(ocrText),
		JSON:        true,
	})
	if err != nil {
		if errors.Is(err, providers.ErrBadResponse) {
			return models.BookRecord{}, fmt.Errorf("%w: %w", ErrModelResponseFormat, err)
		}
		return models.BookRecord{}, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	record, err := parseBookRecord(raw)
	if err != nil {
		slog.Warn("Model returned unusable metadata", "provider", s.provider.Name(), "model", s.model, "error", err)
		return models.BookRecord{}, fmt.Errorf("%w: %w", ErrModelResponseFormat, err)
	}

	slog.Info("Extracted book metadata", "provider", s.provider.Name(), "model", s.model, "title", record.Title)
	return record, nil
}

func buildMetadataPrompt(ocrText string) string {
	return fmt.Sprintf(`You are a cataloging librarian. The text below was produced by OCR from a photo of a book (cover, spine or title page). It may contain recognition errors.

Identify the following fields:
- title: the book title, including any subtitle
- author: the author or authors
- cover: a short description of the cover or the cover type (e.g. hardcover, paperback)
- genre: the literary genre or subject
- publisher: the publisher name
- year_published: the year of publication

OUTPUT FORMAT:
Respond with ONLY a JSON object with exactly these six keys: "title", "author", "cover", "genre", "publisher", "year_published".
Every value must be a string. If a field cannot be determined from the text, use "%s".
Do not add commentary or markdown.

OCR TEXT:
"""
%s
"""`, models.NotSpecified, ocrText)
}

// parseBookRecord decodes the generated text into a record. The text must
// be a JSON object carrying at least one known key; missing keys default
// to models.NotSpecified.
func parseBookRecord(response string) (models.BookRecord, error) {
	// Trim any markdown code blocks
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	dec := json.NewDecoder(bytes.NewReader([]byte(response)))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return models.BookRecord{}, fmt.Errorf("generated text is not a JSON object: %w", err)
	}
	if obj == nil {
		return models.BookRecord{}, errors.New("generated text is null")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return models.BookRecord{}, errors.New("generated text has trailing data after the JSON object")
	}

	fields := make(map[string]string, len(models.RecordKeys))
	found := 0
	for _, key := range models.RecordKeys {
		v, ok := obj[key]
		if !ok {
			continue
		}
		found++

		switch val := v.(type) {
		case nil:
		case string:
			fields[key] = val
		case json.Number:
			fields[key] = val.String()
		case bool:
			fields[key] = fmt.Sprint(val)
		case []interface{}:
			// several authors or genres
			parts := make([]string, 0, len(val))
			for _, p := range val {
				if p != nil {
					parts = append(parts, fmt.Sprint(p))
				}
			}
			fields[key] = strings.Join(parts, ", ")
		default:
			return models.BookRecord{}, fmt.Errorf("field %q has unsupported type %T", key, v)
		}
	}

	if found == 0 {
		return models.BookRecord{}, fmt.Errorf("none of the expected keys %v present", models.RecordKeys)
	}

	return models.NewBookRecord(fields), nil
}
