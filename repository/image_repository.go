package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/models"
)

// ImageRepository handles database operations for Image entities
type ImageRepository struct {
	DB *gorm.DB
}

// NewImageRepository creates a new instance of ImageRepository
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{DB: db}
}

// Create inserts the image and, when it is attached to a room that has no
// reference image yet, promotes it to the room's reference in the same
// transaction. The first-ever upload for a room always becomes its anchor.
func (r *ImageRepository) Create(image *models.Image) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(image).Error; err != nil {
			return fmt.Errorf("failed to create image record: %w", err)
		}

		if image.RoomID == nil {
			return nil
		}

		var room models.Room
		if err := tx.Where("id = ?", *image.RoomID).First(&room).Error; err != nil {
			return fmt.Errorf("failed to load room %s for image attach: %w", *image.RoomID, err)
		}
		if room.ReferenceImageID == nil {
			if err := tx.Model(&models.Room{}).
				Where("id = ?", room.ID).
				Update("reference_image_id", image.ID).Error; err != nil {
				return fmt.Errorf("failed to assign reference image for room %s: %w", room.ID, err)
			}
		}
		return nil
	})
}

func (r *ImageRepository) GetByID(id string) (*models.Image, error) {
	var image models.Image
	err := r.DB.Where("id = ?", id).First(&image).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get image %s: %w", id, err)
	}
	return &image, nil
}

// Delete removes an image, every job that references it, and — when the image
// is its room's reference — repoints the room at the oldest remaining image
// (or clears it) before the row disappears. The reference must be reassigned
// first; the image row is foreign-keyed from rooms.
func (r *ImageRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var image models.Image
		if err := tx.Where("id = ?", id).First(&image).Error; err != nil {
			return err
		}

		if image.RoomID != nil {
			var room models.Room
			if err := tx.Where("id = ?", *image.RoomID).First(&room).Error; err != nil {
				return fmt.Errorf("failed to load room %s during image delete: %w", *image.RoomID, err)
			}
			if room.ReferenceImageID != nil && *room.ReferenceImageID == id {
				var successor models.Image
				err := tx.Where("room_id = ? AND id <> ?", room.ID, id).
					Order("created_at ASC, id ASC").
					First(&successor).Error

				var newRef *string
				switch err {
				case nil:
					newRef = &successor.ID
				case gorm.ErrRecordNotFound:
					newRef = nil
				default:
					return fmt.Errorf("failed to find successor reference image for room %s: %w", room.ID, err)
				}

				if err := tx.Model(&models.Room{}).
					Where("id = ?", room.ID).
					Update("reference_image_id", newRef).Error; err != nil {
					return fmt.Errorf("failed to reassign reference image for room %s: %w", room.ID, err)
				}
			}
		}

		if err := tx.Where("image_id = ?", id).Delete(&models.Job{}).Error; err != nil {
			return fmt.Errorf("failed to delete jobs for image %s: %w", id, err)
		}

		if err := tx.Where("id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return fmt.Errorf("failed to delete image record %s: %w", id, err)
		}
		return nil
	})
}
