package images

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStem(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"book1.jpg", "book1"},
		{"captured_frame_1700000000000.png", "captured_frame_1700000000000"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\scan\cover.jpeg`, "cover"},
		{"archive.tar.gz", "archive.tar"},
		{"noext", "noext"},
		{".png", ""},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := Stem(tt.filename); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewStore(dir)

	data := []byte("not really a png")
	path, err := store.Save(data, "title_page.jpg")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("Expected image under %s, got %s", dir, path)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "title_page_") || !strings.HasSuffix(name, ".png") {
		t.Errorf("Unexpected stored filename %s", name)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored image: %v", err)
	}
	if !bytes.Equal(written, data) {
		t.Errorf("Stored bytes differ from upload")
	}
}

func TestSaveSameMillisecondDoesNotCollide(t *testing.T) {
	store := NewStore(t.TempDir())
	fixed := time.UnixMilli(1700000000000)
	store.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		path, err := store.Save([]byte{byte(i)}, "scan.png")
		if err != nil {
			t.Fatalf("Save() #%d error = %v", i, err)
		}
		if seen[path] {
			t.Fatalf("Duplicate path %s", path)
		}
		seen[path] = true
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 50 {
		t.Errorf("Expected 50 files, got %d", len(entries))
	}
}

func TestSaveRejectsEmptyFilename(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, name := range []string{"", ".jpg"} {
		_, err := store.Save([]byte("x"), name)
		if !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("Save(%q): expected ErrInvalidFilename, got %v", name, err)
		}
	}
}
