package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/llm"
	"github.com/jledbetter-dev/stagepilot/models"
	"github.com/jledbetter-dev/stagepilot/repository"
	"github.com/jledbetter-dev/stagepilot/storage"
)

// Progress checkpoints committed between pipeline stages. Clients poll the
// job row, so each stage boundary is persisted before the next stage runs.
const (
	StepAnalyzing = "Analyzing room layout..."
	StepDetecting = "Detecting surfaces and depth..."
	StepPlanning  = "Generating furniture placement plan..."
	StepRendering = "Rendering final image..."
	StepComplete  = "Final rendering complete"
)

// Pipeline executes staging jobs end to end: analysis, placement planning,
// prompt composition, image synthesis, and result upload.
type Pipeline struct {
	jobs          repository.JobRepositoryInterface
	rooms         repository.RoomRepositoryInterface
	images        repository.ImageRepositoryInterface
	reasoner      llm.Reasoner
	synth         llm.Synthesizer
	store         storage.Store
	resultsBucket string
}

func New(
	jobs repository.JobRepositoryInterface,
	rooms repository.RoomRepositoryInterface,
	images repository.ImageRepositoryInterface,
	reasoner llm.Reasoner,
	synth llm.Synthesizer,
	store storage.Store,
	resultsBucket string,
) *Pipeline {
	return &Pipeline{
		jobs:          jobs,
		rooms:         rooms,
		images:        images,
		reasoner:      reasoner,
		synth:         synth,
		store:         store,
		resultsBucket: resultsBucket,
	}
}

// Process runs one staging job to completion or error. A job whose row or
// image row has disappeared is a no-op, not a failure. Any stage error is
// recorded on the job verbatim and also returned for the worker's log.
func (p *Pipeline) Process(ctx context.Context, jobID string) error {
	job, image, err := p.jobs.GetWithImage(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("pipeline: Job %s or its image no longer exists, skipping", jobID)
			return nil
		}
		return err
	}

	startedAt := time.Now()
	if err := p.jobs.MarkInProgress(jobID, 10.0, StepAnalyzing); err != nil {
		return fmt.Errorf("failed to start job %s: %w", jobID, err)
	}

	if err := p.run(ctx, jobID, job, image, startedAt); err != nil {
		log.Printf("pipeline: Job %s failed: %v", jobID, err)
		if markErr := p.jobs.MarkError(jobID, err.Error()); markErr != nil {
			log.Printf("pipeline: Failed to record error on job %s: %v", jobID, markErr)
		}
		return err
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, jobID string, job *models.Job, image *models.Image, startedAt time.Time) error {
	ref, err := p.resolveReference(job, image)
	if err != nil {
		return fmt.Errorf("reference resolution failed: %w", err)
	}

	refURL, refAnalysis, refPlan := "", "", ""
	if ref != nil {
		refURL, refAnalysis, refPlan = ref.ImageURL, ref.Analysis, ref.Plan
	}

	log.Printf("pipeline: Job %s analyzing room", jobID)
	analysis, err := p.reasoner.AnalyzeRoom(ctx, llm.AnalyzeRequest{
		ImageURL:          image.OriginalURL,
		ReferenceImageURL: refURL,
		ReferenceAnalysis: refAnalysis,
	})
	if err != nil {
		return fmt.Errorf("room analysis failed: %w", err)
	}
	if err := p.jobs.SaveAnalysis(jobID, analysis); err != nil {
		return err
	}
	if err := p.jobs.UpdateProgress(jobID, 30.0, StepDetecting); err != nil {
		return err
	}

	log.Printf("pipeline: Job %s planning furniture placement", jobID)
	plan, err := p.reasoner.PlanFurniturePlacement(ctx, llm.PlacementRequest{
		Analysis:          analysis,
		RoomType:          job.RoomType,
		StylePreset:       job.StylePreset,
		WallDecorations:   job.WallDecorations,
		IncludeTV:         job.IncludeTV,
		TargetImageURL:    image.OriginalURL,
		ReferenceImageURL: refURL,
		ReferencePlan:     refPlan,
	})
	if err != nil {
		return fmt.Errorf("placement planning failed: %w", err)
	}
	if err := p.jobs.SavePlacementPlan(jobID, plan); err != nil {
		return err
	}
	if err := p.jobs.UpdateProgress(jobID, 60.0, StepPlanning); err != nil {
		return err
	}

	log.Printf("pipeline: Job %s composing generation prompt", jobID)
	prompt, err := p.reasoner.ComposeGenerationPrompt(ctx, llm.GenerationPromptRequest{
		OriginalImageURL:  image.OriginalURL,
		Analysis:          analysis,
		PlacementPlan:     plan,
		StylePreset:       job.StylePreset,
		FixWhiteBalance:   job.FixWhiteBalance,
		WallDecorations:   job.WallDecorations,
		IncludeTV:         job.IncludeTV,
		ReferenceImageURL: refURL,
		ReferencePlan:     refPlan,
	})
	if err != nil {
		return fmt.Errorf("prompt composition failed: %w", err)
	}
	if err := p.jobs.SaveGenerationPrompt(jobID, prompt); err != nil {
		return err
	}
	if err := p.jobs.UpdateProgress(jobID, 80.0, StepRendering); err != nil {
		return err
	}

	log.Printf("pipeline: Job %s rendering staged image", jobID)
	imageData, err := p.synth.GenerateStagedImage(ctx, llm.SynthesizeRequest{
		Prompt:            prompt,
		OriginalImageURL:  image.OriginalURL,
		ReferenceImageURL: refURL,
		FixWhiteBalance:   job.FixWhiteBalance,
	})
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}

	resultURL, err := p.store.Upload(p.resultsBucket, jobID+".jpg", imageData, "image/jpeg")
	if err != nil {
		return fmt.Errorf("result upload failed: %w", err)
	}

	seconds := int(time.Since(startedAt).Seconds())
	if err := p.jobs.MarkCompleted(jobID, resultURL, StepComplete, seconds); err != nil {
		return err
	}
	log.Printf("pipeline: Job %s completed in %ds", jobID, seconds)
	return nil
}
