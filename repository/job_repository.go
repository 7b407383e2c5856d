package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/database"
	"github.com/jledbetter-dev/stagepilot/models"
)

// JobRepository handles database operations for Job entities
type JobRepository struct {
	DB *gorm.DB
}

// NewJobRepository creates a new instance of JobRepository
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{DB: db}
}

func (r *JobRepository) Create(job *models.Job) error {
	if err := r.DB.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	var job models.Job
	err := r.DB.Where("id = ?", id).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return &job, nil
}

// GetWithImage loads a job together with the image it targets. Both rows must
// exist; a missing image surfaces as gorm.ErrRecordNotFound just like a
// missing job.
func (r *JobRepository) GetWithImage(id string) (*models.Job, *models.Image, error) {
	job, err := r.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	var image models.Image
	err = r.DB.Where("id = ?", job.ImageID).First(&image).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to get image %s for job %s: %w", job.ImageID, id, err)
	}
	return job, &image, nil
}

func (r *JobRepository) List(filter database.JobFilter) ([]models.Job, error) {
	return database.ListJobs(r.DB, filter)
}

func (r *JobRepository) Delete(id string) error {
	result := r.DB.Where("id = ?", id).Delete(&models.Job{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkInProgress moves a queued job into in_progress and stamps started_at.
func (r *JobRepository) MarkInProgress(id string, percent float64, step string) error {
	now := time.Now().Unix()
	updates := map[string]interface{}{
		"status":           database.StatusInProgress,
		"started_at":       &now,
		"progress_percent": percent,
		"current_step":     step,
	}
	return r.applyUpdates(id, updates)
}

func (r *JobRepository) UpdateProgress(id string, percent float64, step string) error {
	updates := map[string]interface{}{
		"progress_percent": percent,
		"current_step":     step,
	}
	return r.applyUpdates(id, updates)
}

func (r *JobRepository) SaveAnalysis(id, analysis string) error {
	return r.applyUpdates(id, map[string]interface{}{"analysis": analysis})
}

func (r *JobRepository) SavePlacementPlan(id, plan string) error {
	return r.applyUpdates(id, map[string]interface{}{"placement_plan": plan})
}

func (r *JobRepository) SaveGenerationPrompt(id, prompt string) error {
	return r.applyUpdates(id, map[string]interface{}{"generation_prompt": prompt})
}

func (r *JobRepository) MarkCompleted(id, resultURL, step string, generationSeconds int) error {
	now := time.Now().Unix()
	updates := map[string]interface{}{
		"status":                  database.StatusCompleted,
		"progress_percent":        100.0,
		"current_step":            step,
		"completed_at":            &now,
		"result_url":              resultURL,
		"generation_time_seconds": generationSeconds,
	}
	return r.applyUpdates(id, updates)
}

// MarkError records the failure text verbatim. Progress fields already
// committed are left as-is for diagnostics; no result URL is ever set on an
// errored job.
func (r *JobRepository) MarkError(id, message string) error {
	updates := map[string]interface{}{
		"status":        database.StatusError,
		"error_message": message,
	}
	return r.applyUpdates(id, updates)
}

// LatestCompletedForImage returns the authoritative completed job for an
// image: the most recently created completed job with a non-empty result.
// Returns (nil, nil) when no such job exists.
func (r *JobRepository) LatestCompletedForImage(imageID string) (*models.Job, error) {
	var job models.Job
	err := r.DB.
		Where("image_id = ? AND status = ? AND result_url IS NOT NULL AND result_url <> ''", imageID, database.StatusCompleted).
		Order("created_at DESC, id DESC").
		First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find completed job for image %s: %w", imageID, err)
	}
	return &job, nil
}

// FailStaleInProgress fails every in_progress job whose started_at is older
// than the given age. Covers workers killed mid-job, which otherwise leave
// their job stuck at the last committed progress forever.
func (r *JobRepository) FailStaleInProgress(olderThan time.Duration, message string) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	result := r.DB.Model(&models.Job{}).
		Where("status = ? AND started_at IS NOT NULL AND started_at < ?", database.StatusInProgress, cutoff).
		Updates(map[string]interface{}{
			"status":        database.StatusError,
			"error_message": message,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to fail stale jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *JobRepository) applyUpdates(id string, updates map[string]interface{}) error {
	result := r.DB.Model(&models.Job{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update job %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
