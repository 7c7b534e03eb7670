package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/libreo-books/libreo/internal/config"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

// renderText draws text with the 7x13 bitmap face and upscales it so
// Tesseract sees glyphs of a realistic size.
func renderText(text string) image.Image {
	small := image.NewRGBA(image.Rect(0, 0, 10+7*len(text)+10, 30))
	draw.Draw(small, small.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  small,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 20),
	}
	d.DrawString(text)

	const scale = 4
	big := image.NewRGBA(image.Rect(0, 0, small.Bounds().Dx()*scale, small.Bounds().Dy()*scale))
	draw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), draw.Src, nil)
	return big
}

func TestTesseractEngineRecognizesRenderedText(t *testing.T) {
	ensureTesseractAvailable(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "hello.png")
	writeImage(t, path, renderText("HELLO BOOKS"))

	svc := NewService(NewTesseractEngine(config.OCR{Language: "eng"}))

	first, err := svc.ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if !strings.Contains(strings.ToLower(first), "hello") {
		t.Fatalf("unexpected OCR output: %q", first)
	}

	// same image, same engine, same text
	second, err := svc.ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText() second run error = %v", err)
	}
	if first != second {
		t.Errorf("OCR not deterministic: %q vs %q", first, second)
	}
}

func TestTesseractEngineBlankCanvas(t *testing.T) {
	ensureTesseractAvailable(t)

	blank := image.NewRGBA(image.Rect(0, 0, 100, 100))
	draw.Draw(blank, blank.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	path := filepath.Join(t.TempDir(), "blank.png")
	writeImage(t, path, blank)

	svc := NewService(NewTesseractEngine(config.OCR{Language: "eng"}))
	text, err := svc.ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "" {
		t.Errorf("Expected no text from blank canvas, got %q", text)
	}
}
