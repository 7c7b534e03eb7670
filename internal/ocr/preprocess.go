package ocr

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// preprocess writes a grayscale PNG copy of imageData into dir and returns
// its path. Images narrower than minWidth are upscaled keeping the aspect
// ratio; Tesseract does poorly on small glyphs.
func preprocess(imageData []byte, dir string, minWidth int) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image for preprocessing: %w", err)
	}

	var prepared image.Image = imaging.Grayscale(img)
	if prepared.Bounds().Dx() < minWidth {
		prepared = imaging.Resize(prepared, minWidth, 0, imaging.Lanczos)
	}

	out, err := os.CreateTemp(dir, "ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create preprocessed image: %w", err)
	}

	if err := imaging.Encode(out, prepared, imaging.PNG); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to write preprocessed image: %w", err)
	}

	return out.Name(), nil
}
