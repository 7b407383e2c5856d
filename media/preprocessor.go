package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/jledbetter-dev/stagepilot/storage"
)

// MaxEncodeDimension caps the longest edge of any image sent to a model.
const MaxEncodeDimension = 2160

// EncodedImage is an image prepared for a model request: raw bytes plus the
// media type and pixel dimensions the caller needs for resolution locking.
// Width and Height are 0 when the bytes could not be decoded.
type EncodedImage struct {
	Data      []byte
	MediaType string
	Width     int
	Height    int
}

// Preprocessor fetches image URLs and normalizes them for model input.
// URLs under one of the store's own prefixes are read straight from the
// store instead of going through HTTP.
type Preprocessor struct {
	store      storage.Store
	prefixes   []string
	maxDim     int
	httpClient *http.Client
}

// NewPreprocessor creates a preprocessor resolving the given URL prefixes
// through store. maxDim <= 0 falls back to MaxEncodeDimension.
func NewPreprocessor(store storage.Store, prefixes []string, maxDim int) *Preprocessor {
	if maxDim <= 0 {
		maxDim = MaxEncodeDimension
	}
	return &Preprocessor{
		store:      store,
		prefixes:   prefixes,
		maxDim:     maxDim,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchAndEncode retrieves the image at imageURL and prepares it for a model
// request. Images with either dimension above the cap are downsampled with
// Lanczos; smaller images pass through byte-identical. Bytes that fail to
// decode are still returned, with zero dimensions, so the model gets a
// chance at formats we cannot parse.
func (p *Preprocessor) FetchAndEncode(ctx context.Context, imageURL string) (*EncodedImage, error) {
	data, err := p.fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("preprocessor: Failed to decode image from %s: %v", imageURL, err)
		return &EncodedImage{Data: data, MediaType: "image/jpeg", Width: 0, Height: 0}, nil
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > p.maxDim || height > p.maxDim {
		resized := imaging.Fit(img, p.maxDim, p.maxDim, imaging.Lanczos)
		rb := resized.Bounds()
		width, height = rb.Dx(), rb.Dy()

		// Only png survives re-encoding with its own format; webp and
		// anything else comes back as jpeg since Go has no webp encoder.
		encFormat := imaging.JPEG
		if format == "png" {
			encFormat = imaging.PNG
		} else {
			format = "jpeg"
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, resized, encFormat); err != nil {
			return nil, fmt.Errorf("failed to re-encode downsampled image: %w", err)
		}
		data = buf.Bytes()
	}

	return &EncodedImage{
		Data:      data,
		MediaType: mediaTypeForFormat(format),
		Width:     width,
		Height:    height,
	}, nil
}

// Fetch retrieves the raw bytes at imageURL with the same store-prefix
// resolution FetchAndEncode uses, but without decoding or downsampling.
func (p *Preprocessor) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	return p.fetch(ctx, imageURL)
}

func (p *Preprocessor) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	for _, prefix := range p.prefixes {
		bucket, objectName, ok := storage.SplitObjectURL(imageURL, prefix)
		if !ok {
			continue
		}
		data, err := p.store.Read(bucket, objectName)
		if err != nil {
			return nil, fmt.Errorf("failed to read stored image '%s/%s': %w", bucket, objectName, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL '%s': %w", imageURL, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image from %s: status %d", imageURL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body from %s: %w", imageURL, err)
	}
	return data, nil
}

func mediaTypeForFormat(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
