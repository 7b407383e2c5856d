package llm

import (
	"context"
	"math"
)

// NegativePrompt lists the failure modes the dedicated image model is told
// to avoid.
const NegativePrompt = "distorted walls, moved doors, changed camera angle, altered room geometry, shifted windows"

// SynthesizeRequest carries everything a backend needs to render a staged
// image. ReferenceImageURL is empty when the room has no staged anchor.
type SynthesizeRequest struct {
	Prompt            string
	OriginalImageURL  string
	ReferenceImageURL string
	FixWhiteBalance   bool
}

// Synthesizer renders the final staged image from a generation prompt
type Synthesizer interface {
	GenerateStagedImage(ctx context.Context, req SynthesizeRequest) ([]byte, error)
}

var supportedAspectRatios = []struct {
	name  string
	value float64
}{
	{"1:1", 1.0},
	{"16:9", 16.0 / 9.0},
	{"9:16", 9.0 / 16.0},
	{"4:3", 4.0 / 3.0},
	{"3:4", 3.0 / 4.0},
}

// nearestAspectRatio picks the supported ratio closest to width/height.
// Unknown dimensions fall back to square.
func nearestAspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return "1:1"
	}
	target := float64(width) / float64(height)
	best := supportedAspectRatios[0].name
	bestDiff := math.Abs(supportedAspectRatios[0].value - target)
	for _, ar := range supportedAspectRatios[1:] {
		diff := math.Abs(ar.value - target)
		if diff < bestDiff {
			best = ar.name
			bestDiff = diff
		}
	}
	return best
}
