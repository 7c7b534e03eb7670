package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TextLog accumulates every extracted text in a plain text file
type TextLog struct {
	path string
	mu   sync.Mutex
}

// NewTextLog creates a log that appends to the file at path
func NewTextLog(path string) *TextLog {
	return &TextLog{path: path}
}

// Append writes one block for the image stored as filename
func (l *TextLog) Append(filename, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create text log directory: %w", ErrPersistence, err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: failed to open text log: %w", ErrPersistence, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "Text extracted from %s:\n%s\n\n", filename, text); err != nil {
		return fmt.Errorf("%w: failed to append to text log: %w", ErrPersistence, err)
	}
	return nil
}
