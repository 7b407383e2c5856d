package pipeline

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/models"
)

// referenceContext is the consistency seed resolved for a job whose room
// already has a staged anchor: the image the model should match, plus the
// analysis and placement plan to inherit from the anchor's latest render.
type referenceContext struct {
	ImageURL string
	Analysis string
	Plan     string
}

// resolveReference finds the consistency reference for a job. Returns nil
// when the job has no room, the room has no reference image, or the job is
// staging the reference image itself. The staged result of the reference
// image's latest completed job is preferred over its original photo so that
// later angles pick up furniture that was already rendered.
func (p *Pipeline) resolveReference(job *models.Job, image *models.Image) (*referenceContext, error) {
	if job.RoomID == nil {
		return nil, nil
	}

	room, err := p.rooms.GetByID(*job.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if room.ReferenceImageID == nil || *room.ReferenceImageID == image.ID {
		return nil, nil
	}

	refImage, err := p.images.GetByID(*room.ReferenceImageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ref := &referenceContext{ImageURL: refImage.OriginalURL}

	refJob, err := p.jobs.LatestCompletedForImage(refImage.ID)
	if err != nil {
		return nil, err
	}
	if refJob != nil {
		if refJob.Analysis != nil {
			ref.Analysis = *refJob.Analysis
		}
		if refJob.PlacementPlan != nil {
			ref.Plan = *refJob.PlacementPlan
		}
		if refJob.ResultURL != nil && *refJob.ResultURL != "" {
			ref.ImageURL = *refJob.ResultURL
			log.Printf("pipeline: Job %s using staged reference %s", job.ID, ref.ImageURL)
		} else {
			log.Printf("pipeline: Job %s using original reference %s (no staged version)", job.ID, ref.ImageURL)
		}
	}
	return ref, nil
}
