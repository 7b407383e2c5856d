package media

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

var supportedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// IsRasterImage checks if the filename has a supported image extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

// ImageInfo holds the probe results recorded alongside an uploaded image
type ImageInfo struct {
	Width    *int
	Height   *int
	Format   *string
	FileSize *int64
}

// ProbeImage extracts dimensions and format from uploaded bytes without a
// full decode. Returns zero-value fields for anything that cannot be read.
func ProbeImage(data []byte) ImageInfo {
	info := ImageInfo{}
	size := int64(len(data))
	info.FileSize = &size

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return info
	}
	info.Width = &cfg.Width
	info.Height = &cfg.Height
	info.Format = &format
	return info
}

// NormalizeOrientation bakes the EXIF orientation into the pixel data.
// Phone cameras store rotated photos with an orientation tag that object
// store URLs and model inputs ignore, so uploads are flattened up front.
// Bytes without a usable tag come back unchanged.
func NormalizeOrientation(data []byte) []byte {
	exifData, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	tag, err := exifData.Get(exif.Orientation)
	if err != nil || tag == nil {
		return data
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation <= 1 || orientation > 8 {
		return data
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	switch orientation {
	case 2:
		img = imaging.FlipH(img)
	case 3:
		img = imaging.Rotate180(img)
	case 4:
		img = imaging.FlipV(img)
	case 5:
		img = imaging.Transpose(img)
	case 6:
		img = imaging.Rotate270(img)
	case 7:
		img = imaging.Transverse(img)
	case 8:
		img = imaging.Rotate90(img)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(ResultJpegQuality)); err != nil {
		return data
	}
	return buf.Bytes()
}
