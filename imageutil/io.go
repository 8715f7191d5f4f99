package imageutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Decode decodes an image from raw bytes. Standard decoders are tried
// first (PNG, JPEG, GIF, TIFF, WebP), then the fallback WebP decoder for
// files the registered decoder rejects.
func Decode(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// LoadImage loads an image from the specified path.
// Supports PNG, JPEG, GIF, TIFF, and WebP formats.
func LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// imaging does not know webp; decode from raw bytes instead.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// SaveGray saves a grayscale image to the specified path. Format is
// determined by file extension; webp gets its dedicated encoder.
func SaveGray(img *GrayImage, path string) error {
	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer f.Close()
		return webp.Encode(f, img.Gray, &webp.Options{Lossless: true})
	}
	return imaging.Save(img.Gray, path)
}
