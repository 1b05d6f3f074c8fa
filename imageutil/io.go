package imageutil

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const pngDataURIPrefix = "data:image/png;base64,"

var (
	// ErrEmptyImage is returned for nil or zero-sized images.
	ErrEmptyImage = errors.New("imageutil: empty image")
	// ErrBadDataURI is returned when a string is not a base64 data URI.
	ErrBadDataURI = errors.New("imageutil: malformed data URI")
)

// Decode decodes an image in any registered format.
// Supports PNG, JPEG, GIF, BMP, TIFF and WebP.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("failed to decode image: %w", ErrEmptyImage)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, format, fmt.Errorf("failed to decode image: %w", ErrEmptyImage)
	}
	return img, format, nil
}

// LoadImage loads an image from the specified path.
func LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	img, _, err := Decode(data)
	return img, err
}

// EncodePNG encodes img as PNG. Output is deterministic for equal pixels.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SavePNG saves an image as PNG to the specified path.
func SavePNG(img image.Image, path string) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

// EncodeDataURI wraps PNG bytes as a data:image/png;base64 URI.
func EncodeDataURI(pngData []byte) string {
	return pngDataURIPrefix + base64.StdEncoding.EncodeToString(pngData)
}

// DecodeDataURI returns the payload of a base64 data URI of any image type.
func DecodeDataURI(uri string) ([]byte, error) {
	head, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(head, "data:") || !strings.HasSuffix(head, ";base64") {
		return nil, ErrBadDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return data, nil
}
