package llm

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"github.com/jledbetter-dev/stagepilot/media"
)

// ImagenSynthesizer renders staged images through a dedicated image editing
// model with raw reference image support. The model only accepts a fixed
// set of aspect ratios, so the nearest one is requested and the output is
// resampled to the exact source dimensions afterwards.
type ImagenSynthesizer struct {
	client *genai.Client
	model  string
	pre    *media.Preprocessor
}

func NewImagenSynthesizer(client *genai.Client, model string, pre *media.Preprocessor) *ImagenSynthesizer {
	return &ImagenSynthesizer{client: client, model: model, pre: pre}
}

func (s *ImagenSynthesizer) GenerateStagedImage(ctx context.Context, req SynthesizeRequest) ([]byte, error) {
	var refs []genai.ReferenceImage
	origWidth, origHeight := 0, 0
	refID := int32(1)

	target, err := s.pre.FetchAndEncode(ctx, req.OriginalImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare target image: %w", err)
	}
	origWidth, origHeight = target.Width, target.Height
	refs = append(refs, &genai.RawReferenceImage{
		ReferenceID: refID,
		ReferenceImage: &genai.Image{
			ImageBytes: target.Data,
			MIMEType:   target.MediaType,
		},
	})
	refID++

	if req.ReferenceImageURL != "" {
		ref, err := s.pre.FetchAndEncode(ctx, req.ReferenceImageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare reference image: %w", err)
		}
		refs = append(refs, &genai.RawReferenceImage{
			ReferenceID: refID,
			ReferenceImage: &genai.Image{
				ImageBytes: ref.Data,
				MIMEType:   ref.MediaType,
			},
		})
	}

	fullPrompt := req.Prompt
	fullPrompt += "\n\n" + targetImageInstruction
	if !req.FixWhiteBalance {
		fullPrompt += "\n\nWHITE BALANCE LOCK: Preserve the original color temperature exactly."
	}
	if req.ReferenceImageURL != "" {
		fullPrompt += "\n\nCONSISTENCY REFERENCE (Staged Angle): The second reference image shows existing furniture and style from another angle of the same room. Use it ONLY to match materials, styles, and object inventory. Do NOT copy its camera angle, wall positions, or room geometry."
	}

	aspectRatio := nearestAspectRatio(origWidth, origHeight)
	log.Printf("llm: Calling image model %s (aspect ratio %s for source %dx%d)", s.model, aspectRatio, origWidth, origHeight)

	result, err := s.client.Models.EditImage(
		ctx,
		s.model,
		fullPrompt,
		refs,
		&genai.EditImageConfig{
			NumberOfImages:   1,
			NegativePrompt:   NegativePrompt,
			AspectRatio:      aspectRatio,
			PersonGeneration: genai.PersonGenerationDontAllow,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("image generation request failed: %w", err)
	}
	if len(result.GeneratedImages) == 0 || result.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("no image in model response")
	}

	return media.LockResolution(result.GeneratedImages[0].Image.ImageBytes, origWidth, origHeight)
}
