// Package pano loads panorama images and writes segmentation masks.
package pano

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned for images with zero width or height.
var ErrEmptyImage = errors.New("image has zero width or height")

// Panorama is a decoded source image ready for classification.
type Panorama struct {
	Path   string      // Original file path
	Name   string      // Display name, defaults to the file's base name
	Format string      // Decoder name reported by image.Decode
	Image  image.Image // Decoded pixels
}

// Load opens, decodes and validates the panorama at path.
// A missing file yields an error wrapping fs.ErrNotExist.
func Load(path string) (*Panorama, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open panorama: %w", err)
	}
	defer file.Close()

	img, format, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Panorama{
		Path:   path,
		Name:   Basename(path),
		Format: format,
		Image:  img,
	}, nil
}

// Decode decodes an image from r and rejects empty results.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if err := Validate(img); err != nil {
		return nil, format, err
	}
	return img, format, nil
}

// Validate checks that img can be handed to the classifier.
func Validate(img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image: %w", ErrEmptyImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%dx%d: %w", b.Dx(), b.Dy(), ErrEmptyImage)
	}
	return nil
}

// Width returns the image width in pixels.
func (p *Panorama) Width() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (p *Panorama) Height() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// Basename returns the file name without directory or extension.
func Basename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SupportedFormats returns the list of supported image extensions.
func SupportedFormats() []string {
	return []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".webp", ".bmp"}
}

// IsSupportedFormat checks if the given path has a supported image extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
