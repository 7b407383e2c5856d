package media

import (
	"bytes"
	"fmt"
	"image"
	"log"

	"github.com/disintegration/imaging"
)

// ResultJpegQuality is the encode quality for final staged renders.
const ResultJpegQuality = 90

// LockResolution forces generated image bytes back to the exact dimensions
// of the source photograph. Models frequently return their own native
// resolution; the staged result must overlay the original pixel-for-pixel.
// When width or height is 0 the source dimensions are unknown and the bytes
// pass through untouched.
func LockResolution(data []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		log.Printf("media: Resampling generated image from %dx%d to %dx%d", bounds.Dx(), bounds.Dy(), width, height)
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(ResultJpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode resampled image: %w", err)
	}
	return buf.Bytes(), nil
}
