package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/libreo-books/libreo/internal/images"
	"github.com/libreo-books/libreo/internal/pipeline"
)

// HandleUpload accepts a multipart form with an "image" file part, or a
// JSON body {"image_url": "..."}, and runs it through the pipeline.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.ContentLength > h.maxUploadBytes {
		h.writeError(w, h.tooLargeMessage(), http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	// Check if this is a JSON request with image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	data, filename, err := h.fetcher.Download(r.Context(), request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.process(w, r, pipeline.Upload{Data: data, Filename: filename})
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, h.tooLargeMessage(), http.StatusBadRequest)
			return
		}
		h.writeError(w, msgNoImage, http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	// a part sent with filename="" is parsed as a plain form value
	headers := r.MultipartForm.File["image"]
	if len(headers) == 0 {
		if _, ok := r.MultipartForm.Value["image"]; ok {
			h.writeError(w, msgNoSelected, http.StatusBadRequest)
			return
		}
		h.writeError(w, msgNoImage, http.StatusBadRequest)
		return
	}
	header := headers[0]

	file, err := header.Open()
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.process(w, r, pipeline.Upload{Data: fileData, Filename: header.Filename})
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request, upload pipeline.Upload) {
	result, err := h.pipeline.Process(r.Context(), upload)
	if err != nil {
		if errors.Is(err, images.ErrInvalidFilename) {
			h.writeError(w, msgNoSelected, http.StatusBadRequest)
			return
		}
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, newUploadResponse(result))
}

func newUploadResponse(result *pipeline.Result) UploadResponse {
	switch {
	case result.Stage == pipeline.StageEmptyText:
		return UploadResponse{Message: msgEmptyText, Text: ""}
	case result.ExtractionErr != nil:
		return UploadResponse{
			Message: msgExtractionFail,
			Text:    result.Text,
			Data:    map[string]string{"error": result.ExtractionErr.Error()},
		}
	case result.Record != nil:
		return UploadResponse{Message: msgExtracted, Text: result.Text, Data: result.Record}
	default:
		return UploadResponse{Message: msgExtracted, Text: result.Text}
	}
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf("File too large (max %d bytes)", h.maxUploadBytes)
}
