package repository

import (
	"time"

	"github.com/jledbetter-dev/stagepilot/database"
	"github.com/jledbetter-dev/stagepilot/models"
)

// PropertyRepositoryInterface defines the methods for property data operations
type PropertyRepositoryInterface interface {
	Create(property *models.Property) error
	ListByUser(userID string) ([]models.Property, error)
	GetByID(id string) (*models.Property, error)
	GetWithRooms(id string) (*models.Property, error)
}

// RoomRepositoryInterface defines the methods for room data operations
type RoomRepositoryInterface interface {
	Create(room *models.Room) error
	GetByID(id string) (*models.Room, error)
	GetWithImages(id string) (*models.Room, error)
	CountImages(roomID string) (int64, error)
	Delete(id string) error
}

// ImageRepositoryInterface defines the methods for image data operations.
// Create assigns the owning room's reference image when the room has none;
// Delete reassigns it before removing the row, so a room never references a
// deleted image.
type ImageRepositoryInterface interface {
	Create(image *models.Image) error
	GetByID(id string) (*models.Image, error)
	Delete(id string) error
}

// JobRepositoryInterface defines the methods for job data operations. Each
// progress mutation is committed on its own so a polling client sees live
// progress rather than one atomic jump at the end.
type JobRepositoryInterface interface {
	Create(job *models.Job) error
	GetByID(id string) (*models.Job, error)
	GetWithImage(id string) (*models.Job, *models.Image, error)
	List(filter database.JobFilter) ([]models.Job, error)
	Delete(id string) error

	MarkInProgress(id string, percent float64, step string) error
	UpdateProgress(id string, percent float64, step string) error
	SaveAnalysis(id, analysis string) error
	SavePlacementPlan(id, plan string) error
	SaveGenerationPrompt(id, prompt string) error
	MarkCompleted(id, resultURL, step string, generationSeconds int) error
	MarkError(id, message string) error

	LatestCompletedForImage(imageID string) (*models.Job, error)
	FailStaleInProgress(olderThan time.Duration, message string) (int64, error)
}

// UserRepositoryInterface defines the methods for user data operations
type UserRepositoryInterface interface {
	GetByID(id string) (*models.User, error)
}
