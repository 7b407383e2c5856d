package llm

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"github.com/jledbetter-dev/stagepilot/media"
)

// ChatSynthesizer renders staged images through a multimodal chat model
// that returns image parts inline. The target photo rides along as a part
// and an edit-task block pins the room geometry; the model's output is
// resampled back to the source dimensions afterwards since chat models
// pick their own native resolution.
type ChatSynthesizer struct {
	client *genai.Client
	model  string
	pre    *media.Preprocessor
}

func NewChatSynthesizer(client *genai.Client, model string, pre *media.Preprocessor) *ChatSynthesizer {
	return &ChatSynthesizer{client: client, model: model, pre: pre}
}

func (s *ChatSynthesizer) GenerateStagedImage(ctx context.Context, req SynthesizeRequest) ([]byte, error) {
	var parts []*genai.Part
	origWidth, origHeight := 0, 0

	// Reference image first, context only
	if req.ReferenceImageURL != "" {
		parts = append(parts, genai.NewPartFromText(referenceContextInstruction))
		ref, err := s.pre.FetchAndEncode(ctx, req.ReferenceImageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare reference image: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(ref.Data, ref.MediaType))
	}

	// Target image second and final
	parts = append(parts, genai.NewPartFromText(targetImageInstruction))
	target, err := s.pre.FetchAndEncode(ctx, req.OriginalImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare target image: %w", err)
	}
	origWidth, origHeight = target.Width, target.Height
	parts = append(parts, genai.NewPartFromBytes(target.Data, target.MediaType))

	parts = append(parts, genai.NewPartFromText(buildEditTaskText(req.Prompt, origWidth, origHeight, req.FixWhiteBalance)))

	content := &genai.Content{
		Parts: parts,
	}

	log.Printf("llm: Calling chat model %s for staged render", s.model)
	result, err := s.client.Models.GenerateContent(
		ctx,
		s.model,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{
				AspectRatio: nearestAspectRatio(origWidth, origHeight),
			},
			Temperature: floatPtr(0.7),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("image generation request failed: %w", err)
	}

	generated, err := s.firstImage(ctx, result)
	if err != nil {
		return nil, err
	}

	return media.LockResolution(generated, origWidth, origHeight)
}

// firstImage returns the first image carried in the response. Chat models
// usually return inline bytes, but an image can also arrive as a file URI
// that has to be downloaded.
func (s *ChatSynthesizer) firstImage(ctx context.Context, result *genai.GenerateContentResponse) ([]byte, error) {
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
			if part.FileData != nil && part.FileData.FileURI != "" {
				data, err := s.pre.Fetch(ctx, part.FileData.FileURI)
				if err != nil {
					return nil, fmt.Errorf("failed to download generated image: %w", err)
				}
				return data, nil
			}
		}
	}
	return nil, fmt.Errorf("no image in model response")
}
