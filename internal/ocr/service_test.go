package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/libreo-books/libreo/internal/images"
)

type fakeEngine struct {
	text  string
	err   error
	calls int
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	f.calls++
	return f.text, f.err
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		img.Set(x, 5, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(dir, "page.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	imagePath := writePNG(t, dir)

	corruptPath := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corruptPath, []byte("definitely not an image"), 0644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}

	engineFailure := errors.New("tesseract not found")

	tests := []struct {
		name     string
		path     string
		engine   *fakeEngine
		expected string
		wantErr  bool
		cause    error
		calls    int
	}{
		{
			name:     "trims recognized text",
			path:     imagePath,
			engine:   &fakeEngine{text: "\n  THE GREAT GATSBY\nF. Scott Fitzgerald \n\f"},
			expected: "THE GREAT GATSBY\nF. Scott Fitzgerald",
			calls:    1,
		},
		{
			name:     "no legible text is success",
			path:     imagePath,
			engine:   &fakeEngine{text: " \n\f"},
			expected: "",
			calls:    1,
		},
		{
			name:    "missing file",
			path:    filepath.Join(dir, "nope.png"),
			engine:  &fakeEngine{},
			wantErr: true,
			calls:   0,
		},
		{
			name:    "corrupt image",
			path:    corruptPath,
			engine:  &fakeEngine{},
			wantErr: true,
			calls:   0,
		},
		{
			name:    "engine failure keeps cause",
			path:    imagePath,
			engine:  &fakeEngine{err: engineFailure},
			wantErr: true,
			cause:   engineFailure,
			calls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.engine)
			text, err := svc.ExtractText(context.Background(), tt.path)

			if tt.wantErr {
				if !errors.Is(err, ErrEngine) {
					t.Fatalf("Expected ErrEngine, got %v", err)
				}
				if tt.cause != nil && !errors.Is(err, tt.cause) {
					t.Errorf("Expected cause %v to be wrapped, got %v", tt.cause, err)
				}
			} else if err != nil {
				t.Fatalf("ExtractText() error = %v", err)
			}

			if text != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, text)
			}
			if tt.engine.calls != tt.calls {
				t.Errorf("Expected %d engine calls, got %d", tt.calls, tt.engine.calls)
			}
		})
	}
}

// inkEngine "reads" an image by describing where its dark pixels are, so
// its output depends only on the pixels it is handed.
type inkEngine struct{}

func (inkEngine) Name() string { return "ink" }

func (inkEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", err
	}

	var lines []string
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dark := 0
		for x := b.Min.X; x < b.Max.X; x++ {
			if g := color.GrayModel.Convert(img.At(x, y)).(color.Gray); g.Y < 128 {
				dark++
			}
		}
		if dark > 0 {
			lines = append(lines, fmt.Sprintf("row %d: %d", y, dark))
		}
	}
	return strings.Join(lines, "\n") + "\n\f", nil
}

func TestExtractTextIsDeterministic(t *testing.T) {
	data, err := os.ReadFile(writePNG(t, t.TempDir()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	for _, minWidth := range []int{0, 64} {
		t.Run(fmt.Sprintf("min width %d", minWidth), func(t *testing.T) {
			store := images.NewStore(t.TempDir())
			svc := NewService(inkEngine{}).WithPreprocessing(minWidth)

			first, err := store.Save(data, "page.png")
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			second, err := store.Save(data, "page.png")
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			var results []string
			for _, path := range []string{first, first, second} {
				text, err := svc.ExtractText(context.Background(), path)
				if err != nil {
					t.Fatalf("ExtractText(%s) error = %v", path, err)
				}
				results = append(results, text)
			}

			if results[0] == "" {
				t.Fatal("Expected text for an image with a dark line")
			}
			if results[0] != results[1] || results[0] != results[2] {
				t.Errorf("Expected identical text across runs, got %q", results)
			}
		})
	}
}

func TestExtractTextBlankCanvas(t *testing.T) {
	blank := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for x := 0; x < 100; x++ {
		for y := 0; y < 100; y++ {
			blank.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, blank); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(t.TempDir(), "blank.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}

	for _, minWidth := range []int{0, 400} {
		text, err := NewService(inkEngine{}).WithPreprocessing(minWidth).ExtractText(context.Background(), path)
		if err != nil {
			t.Fatalf("ExtractText() error = %v", err)
		}
		if text != "" {
			t.Errorf("Expected no text from a blank canvas (min width %d), got %q", minWidth, text)
		}
	}
}
