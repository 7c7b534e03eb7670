package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/libreo-books/libreo/internal/images"
	"github.com/libreo-books/libreo/internal/pipeline"
	"github.com/libreo-books/libreo/internal/storage"
)

const (
	msgNoImage        = "No image uploaded"
	msgNoSelected     = "No selected image"
	msgEmptyText      = "No text detected in the image"
	msgExtracted      = "Text extracted successfully"
	msgExtractionFail = "Text extracted but metadata extraction failed"
)

type Handler struct {
	pipeline       *pipeline.Pipeline
	records        *storage.RecordStore
	fetcher        *images.Fetcher
	maxUploadBytes int64
}

// UploadResponse is the body returned for every processed upload
type UploadResponse struct {
	Message string `json:"message"`
	Text    string `json:"text"`
	Data    any    `json:"data,omitempty"`
}

func New(p *pipeline.Pipeline, records *storage.RecordStore, fetcher *images.Fetcher, maxUploadBytes int64) *Handler {
	return &Handler{
		pipeline:       p,
		records:        records,
		fetcher:        fetcher,
		maxUploadBytes: maxUploadBytes,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Warn(message, "status", code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("Unable to encode JSON error", "err", err)
	}
}
