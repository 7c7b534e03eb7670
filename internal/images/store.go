package images

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidFilename is returned when an upload carries no usable filename
var ErrInvalidFilename = errors.New("invalid image filename")

// Store persists uploaded images under a single directory
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates an image store rooted at dir. The directory is
// created lazily on the first Save.
func NewStore(dir string) *Store {
	return &Store{
		dir: dir,
		now: time.Now,
	}
}

// Dir returns the directory images are written to
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under a name derived from originalFilename and returns
// the path of the new file. It never overwrites an existing file.
func (s *Store) Save(data []byte, originalFilename string) (string, error) {
	stem := Stem(originalFilename)
	if stem == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, originalFilename)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	imageFilename := fmt.Sprintf("%s_%d_%s.png", stem, s.now().UnixMilli(), uuid.New().String()[:8])
	imagePath := filepath.Join(s.dir, imageFilename)

	f, err := os.OpenFile(imagePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(imagePath)
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(imagePath)
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	slog.Info("Image saved", "filename", imageFilename, "bytes", len(data))
	return imagePath, nil
}

// Stem returns the filename without directory components or extension
func Stem(filename string) string {
	// uploads from Windows clients may carry backslash separators
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}
