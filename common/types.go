// package common contains common types and helpers that are used throughout this engine. They are not interface-wrapped structs,
// just plain structs and functions that express commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel in row-major order.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// BytesPerRow returns the row pitch of the staged pixels.
//
// Returns:
//   - uint32: the number of bytes in a single row (width * 4)
func (t TextureStagingData) BytesPerRow() uint32 {
	return t.Width * 4
}

// Validate checks that the pixel slice matches the declared dimensions.
//
// Returns:
//   - error: an error if the staging data is empty or the pixel count does not match width * height
func (t TextureStagingData) Validate() error {
	if t.Width == 0 || t.Height == 0 {
		return errors.New("texture staging data has zero dimensions")
	}
	want := int(t.BytesPerRow()) * int(t.Height)
	if len(t.Pixels) != want {
		return fmt.Errorf("texture staging data holds %d bytes, want %d for %dx%d", len(t.Pixels), want, t.Width, t.Height)
	}
	return nil
}

// StagingFromImage converts any image.Image into RGBA staging data.
//
// Parameters:
//   - img: the decoded source image
//
// Returns:
//   - TextureStagingData: the RGBA pixels ready for upload
func StagingFromImage(img image.Image) TextureStagingData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(rgba, image.Point{}, img, bounds, xdraw.Src, nil)

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}

// StagingFromBytes decodes an encoded PNG or JPEG image held in memory.
//
// Parameters:
//   - data: the encoded image bytes
//
// Returns:
//   - TextureStagingData: the RGBA pixels ready for upload
//   - error: error if decoding fails
func StagingFromBytes(data []byte) (TextureStagingData, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode embedded image: %w", err)
	}
	return StagingFromImage(img), nil
}

// StagingFromFile decodes a PNG or JPEG image on disk.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - TextureStagingData: the RGBA pixels ready for upload
//   - error: error if the file cannot be opened or decoded
func StagingFromFile(path string) (TextureStagingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", path, err)
	}
	return StagingFromImage(img), nil
}
