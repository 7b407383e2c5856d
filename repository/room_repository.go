package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/models"
)

// RoomRepository handles database operations for Room entities
type RoomRepository struct {
	DB *gorm.DB
}

// NewRoomRepository creates a new instance of RoomRepository
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{DB: db}
}

func (r *RoomRepository) Create(room *models.Room) error {
	if err := r.DB.Create(room).Error; err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *RoomRepository) GetByID(id string) (*models.Room, error) {
	var room models.Room
	err := r.DB.Where("id = ?", id).First(&room).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get room %s: %w", id, err)
	}
	return &room, nil
}

// GetWithImages loads a room with its images and each image's jobs, newest
// job first, so callers can pick out the latest completed result per image.
func (r *RoomRepository) GetWithImages(id string) (*models.Room, error) {
	var room models.Room
	err := r.DB.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("images.created_at ASC") }).
		Preload("Images.Jobs", func(db *gorm.DB) *gorm.DB { return db.Order("jobs.created_at DESC") }).
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get room %s with images: %w", id, err)
	}
	return &room, nil
}

func (r *RoomRepository) CountImages(roomID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Image{}).Where("room_id = ?", roomID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count images for room %s: %w", roomID, err)
	}
	return count, nil
}

func (r *RoomRepository) Delete(id string) error {
	result := r.DB.Where("id = ?", id).Delete(&models.Room{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete room %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
