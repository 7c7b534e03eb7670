package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/libreo-books/libreo/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

func TestExport(t *testing.T) {
	records := []models.BookRecord{record(1), record(2), record(3)}
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "records.json")
		if err := Export(records, "json", path); err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		data, _ := os.ReadFile(path)
		var got []models.BookRecord
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(got) != 3 || got[2] != records[2] {
			t.Errorf("Unexpected JSON export %+v", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "records.yaml")
		if err := Export(records, "YAML", path); err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		data, _ := os.ReadFile(path)
		var got []map[string]string
		if err := yaml.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(got) != 3 || got[0]["year_published"] != "1901" {
			t.Errorf("Unexpected YAML export %+v", got)
		}
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(dir, "records.parquet")
		if err := Export(records, "parquet", path); err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		got, err := parquet.ReadFile[models.BookRecord](path)
		if err != nil {
			t.Fatalf("read parquet: %v", err)
		}
		if len(got) != 3 || got[1] != records[1] {
			t.Errorf("Unexpected parquet export %+v", got)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if err := Export(records, "csv", filepath.Join(dir, "records.csv")); err == nil {
			t.Error("Expected error for csv")
		}
	})
}
