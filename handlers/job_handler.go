package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/database"
	"github.com/jledbetter-dev/stagepilot/models"
	"github.com/jledbetter-dev/stagepilot/repository"
)

// JobQueue is the queue surface the handler needs: hand new jobs to the
// workers and drop the outcome marker of a deleted job.
type JobQueue interface {
	Enqueue(ctx context.Context, jobID string) error
	ClearOutcome(ctx context.Context, jobID string) error
}

// JobHandler serves the staging job endpoints
type JobHandler struct {
	Jobs          repository.JobRepositoryInterface
	Images        repository.ImageRepositoryInterface
	Dispatcher    JobQueue
	DefaultUserID string
}

// Create inserts a queued job and hands it to the dispatcher. The request
// returns immediately; clients poll Get until the status is terminal.
func (jh *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageID         string  `json:"image_id"`
		RoomType        string  `json:"room_type"`
		StylePreset     string  `json:"style_preset"`
		FixWhiteBalance *bool   `json:"fix_white_balance"`
		WallDecorations *bool   `json:"wall_decorations"`
		IncludeTV       *bool   `json:"include_tv"`
		RoomID          *string `json:"room_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ImageID == "" || req.RoomType == "" || req.StylePreset == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: image_id, room_type, and style_preset")
		return
	}

	image, err := jh.Images.GetByID(req.ImageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		log.Printf("Error fetching image %s: %v", req.ImageID, err)
		writeError(w, http.StatusInternalServerError, "Failed to verify image")
		return
	}

	job := &models.Job{
		ID:              uuid.New().String(),
		UserID:          jh.DefaultUserID,
		ImageID:         image.ID,
		RoomID:          req.RoomID,
		RoomType:        req.RoomType,
		StylePreset:     req.StylePreset,
		FixWhiteBalance: req.FixWhiteBalance != nil && *req.FixWhiteBalance,
		WallDecorations: req.WallDecorations == nil || *req.WallDecorations,
		IncludeTV:       req.IncludeTV != nil && *req.IncludeTV,
		Status:          database.StatusQueued,
	}

	log.Printf("Received job creation request for image %s (room_type: %s)", req.ImageID, req.RoomType)

	if err := jh.Jobs.Create(job); err != nil {
		log.Printf("Error creating job: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := jh.Dispatcher.Enqueue(r.Context(), job.ID); err != nil {
		log.Printf("Error enqueuing job %s: %v", job.ID, err)
		if markErr := jh.Jobs.MarkError(job.ID, "failed to enqueue job"); markErr != nil {
			log.Printf("Error marking job %s: %v", job.ID, markErr)
		}
		writeError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	view := newJobView(job, &image.OriginalURL)
	writeJSON(w, http.StatusCreated, view)
}

// List returns jobs newest first, optionally filtered by status and room_id
// query parameters.
func (jh *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := database.JobFilter{
		Status: r.URL.Query().Get("status"),
		RoomID: r.URL.Query().Get("room_id"),
	}

	jobs, err := jh.Jobs.List(filter)
	if err != nil {
		log.Printf("Error listing jobs: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	views := make([]JobView, 0, len(jobs))
	for i := range jobs {
		views = append(views, newJobView(&jobs[i], nil))
	}
	writeJSON(w, http.StatusOK, JobListResponse{Jobs: views})
}

// Get is the polling endpoint; it joins in the source image's URL.
func (jh *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, image, err := jh.Jobs.GetWithImage(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		log.Printf("Error fetching job %s: %v", jobID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch job")
		return
	}

	view := newJobView(job, &image.OriginalURL)
	writeJSON(w, http.StatusOK, view)
}

func (jh *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	if err := jh.Jobs.Delete(jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		log.Printf("Error deleting job %s: %v", jobID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete job")
		return
	}

	if err := jh.Dispatcher.ClearOutcome(r.Context(), jobID); err != nil {
		log.Printf("Error clearing outcome for job %s: %v", jobID, err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Job deleted successfully"})
}
