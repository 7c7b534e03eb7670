package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/libreo-books/libreo/internal/models"
)

// ErrPersistence wraps every failure to read or write persisted state
var ErrPersistence = errors.New("persistence error")

// RecordStore keeps the collection of extracted book records in a single
// JSON array file. All access goes through one mutex, and each write
// replaces the file atomically, so concurrent appends are never lost.
type RecordStore struct {
	path string
	mu   sync.Mutex
}

// NewRecordStore creates a store backed by the file at path
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// Path returns the backing file
func (s *RecordStore) Path() string {
	return s.path
}

// Append adds record to the end of the collection
func (s *RecordStore) Append(record models.BookRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	records = append(records, record)
	return s.save(records)
}

// List returns every record in insertion order
func (s *RecordStore) List() ([]models.BookRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *RecordStore) load() ([]models.BookRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.BookRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read records: %w", ErrPersistence, err)
	}
	if len(data) == 0 {
		return []models.BookRecord{}, nil
	}

	var records []models.BookRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", ErrPersistence, s.path, err)
	}
	if records == nil {
		records = []models.BookRecord{}
	}
	return records, nil
}

func (s *RecordStore) save(records []models.BookRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode records: %w", ErrPersistence, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create records directory: %w", ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", ErrPersistence, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to write records: %w", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to write records: %w", ErrPersistence, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to replace %s: %w", ErrPersistence, s.path, err)
	}

	return nil
}
