package llm

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"github.com/jledbetter-dev/stagepilot/media"
)

// AnalyzeRequest asks for an architectural analysis of a room photo. The
// reference fields carry the staged anchor of the room when one exists.
type AnalyzeRequest struct {
	ImageURL          string
	ReferenceImageURL string
	ReferenceAnalysis string
}

// PlacementRequest asks for a furniture placement plan grounded in a prior
// analysis.
type PlacementRequest struct {
	Analysis          string
	RoomType          string
	StylePreset       string
	WallDecorations   bool
	IncludeTV         bool
	TargetImageURL    string
	ReferenceImageURL string
	ReferencePlan     string
}

// GenerationPromptRequest asks for the final single-paragraph prompt fed to
// the image synthesizer.
type GenerationPromptRequest struct {
	OriginalImageURL  string
	Analysis          string
	PlacementPlan     string
	StylePreset       string
	FixWhiteBalance   bool
	WallDecorations   bool
	IncludeTV         bool
	ReferenceImageURL string
	ReferencePlan     string
}

// Reasoner runs the text reasoning passes of the staging pipeline
type Reasoner interface {
	AnalyzeRoom(ctx context.Context, req AnalyzeRequest) (string, error)
	PlanFurniturePlacement(ctx context.Context, req PlacementRequest) (string, error)
	ComposeGenerationPrompt(ctx context.Context, req GenerationPromptRequest) (string, error)
}

// GeminiReasoner implements Reasoner against the Gemini API
type GeminiReasoner struct {
	client *genai.Client
	model  string
	pre    *media.Preprocessor
}

func NewGeminiReasoner(client *genai.Client, model string, pre *media.Preprocessor) *GeminiReasoner {
	return &GeminiReasoner{client: client, model: model, pre: pre}
}

func (r *GeminiReasoner) AnalyzeRoom(ctx context.Context, req AnalyzeRequest) (string, error) {
	prompt := buildAnalysisPrompt(req.ReferenceImageURL, req.ReferenceAnalysis)
	imageURLs := []string{req.ImageURL}
	if req.ReferenceImageURL != "" {
		imageURLs = append(imageURLs, req.ReferenceImageURL)
	}
	return r.generateText(ctx, prompt, imageURLs)
}

func (r *GeminiReasoner) PlanFurniturePlacement(ctx context.Context, req PlacementRequest) (string, error) {
	prompt := buildPlacementPrompt(req)
	var imageURLs []string
	if req.TargetImageURL != "" {
		imageURLs = append(imageURLs, req.TargetImageURL)
	}
	if req.ReferenceImageURL != "" {
		imageURLs = append(imageURLs, req.ReferenceImageURL)
	}
	return r.generateText(ctx, prompt, imageURLs)
}

func (r *GeminiReasoner) ComposeGenerationPrompt(ctx context.Context, req GenerationPromptRequest) (string, error) {
	prompt := buildGenerationPromptPrompt(req)
	imageURLs := []string{req.OriginalImageURL}
	if req.ReferenceImageURL != "" {
		imageURLs = append(imageURLs, req.ReferenceImageURL)
	}
	return r.generateText(ctx, prompt, imageURLs)
}

// generateText sends a text prompt plus the given image URLs and returns the
// model's text response.
func (r *GeminiReasoner) generateText(ctx context.Context, prompt string, imageURLs []string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	for _, url := range imageURLs {
		encoded, err := r.pre.FetchAndEncode(ctx, url)
		if err != nil {
			return "", fmt.Errorf("failed to prepare image %s: %w", url, err)
		}
		parts = append(parts, genai.NewPartFromBytes(encoded.Data, encoded.MediaType))
	}

	content := &genai.Content{
		Parts: parts,
	}

	result, err := r.client.Models.GenerateContent(
		ctx,
		r.model,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: floatPtr(0.4),
		},
	)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}

	log.Printf("llm: Empty response from model %s", r.model)
	return "", fmt.Errorf("no text in model response")
}

func floatPtr(f float64) *float32 {
	f32 := float32(f)
	return &f32
}
