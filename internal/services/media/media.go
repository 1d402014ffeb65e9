// Package media decodes uploaded photos and encodes plant crops.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	"gardenvision/internal/fusion"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage is returned for uploads without pixels.
var ErrEmptyImage = errors.New("image is empty")

// Decode reads a JPEG, PNG, GIF, BMP or TIFF image and applies its EXIF
// orientation so boxes line up with what the user sees.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// JPEGEncoder encodes crops as base64 JPEG. It implements fusion.CropEncoder.
type JPEGEncoder struct {
	Quality int
}

var _ fusion.CropEncoder = JPEGEncoder{}

// EncodeCrop returns the base64 JPEG of img, or "" when img has no pixels.
func (e JPEGEncoder) EncodeCrop(img image.Image) (string, error) {
	if img.Bounds().Empty() {
		return "", nil
	}

	data, err := e.Encode(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Encode returns the raw JPEG bytes of img.
func (e JPEGEncoder) Encode(img image.Image) ([]byte, error) {
	quality := e.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
