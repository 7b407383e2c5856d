package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/models"
)

// PropertyRepository handles database operations for Property entities
type PropertyRepository struct {
	DB *gorm.DB
}

// NewPropertyRepository creates a new instance of PropertyRepository
func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{DB: db}
}

func (r *PropertyRepository) Create(property *models.Property) error {
	if err := r.DB.Create(property).Error; err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

func (r *PropertyRepository) ListByUser(userID string) ([]models.Property, error) {
	var properties []models.Property
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties for user %s: %w", userID, err)
	}
	return properties, nil
}

func (r *PropertyRepository) GetByID(id string) (*models.Property, error) {
	var property models.Property
	err := r.DB.Where("id = ?", id).First(&property).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get property %s: %w", id, err)
	}
	return &property, nil
}

// GetWithRooms loads a property with its full Room -> Image -> Job tree, the
// shape the property detail endpoint serves.
func (r *PropertyRepository) GetWithRooms(id string) (*models.Property, error) {
	var property models.Property
	err := r.DB.
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("rooms.created_at ASC") }).
		Preload("Rooms.Images", func(db *gorm.DB) *gorm.DB { return db.Order("images.created_at ASC") }).
		Preload("Rooms.Images.Jobs", func(db *gorm.DB) *gorm.DB { return db.Order("jobs.created_at DESC") }).
		Where("id = ?", id).
		First(&property).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get property %s with rooms: %w", id, err)
	}
	return &property, nil
}
