package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/libreo-books/libreo/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// ExportFormats lists the formats accepted by Export
var ExportFormats = []string{"json", "yaml", "parquet"}

// Export writes records to path in the given format
func Export(records []models.BookRecord, format, path string) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return writeFile(path, data)
	case "yaml", "yml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return writeFile(path, data)
	case "parquet":
		if err := parquet.WriteFile(path, records); err != nil {
			return fmt.Errorf("failed to write parquet file: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format: %s (supported: %s)", format, strings.Join(ExportFormats, ", "))
	}
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
