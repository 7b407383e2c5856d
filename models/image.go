package models

// Image is one uploaded photograph. The blob itself lives in the uploads
// bucket; OriginalURL is the public URL the storage driver built for it.
type Image struct {
	ID               string  `gorm:"primaryKey" json:"id"`
	UserID           string  `gorm:"not null;index" json:"user_id"`
	RoomID           *string `gorm:"index" json:"room_id,omitempty"` // Nullable
	OriginalFilename string  `gorm:"not null" json:"original_filename"`
	OriginalURL      string  `gorm:"not null" json:"original_url"`
	RoomType         *string `gorm:"" json:"room_type,omitempty"` // Nullable, detected
	Width            *int    `gorm:"" json:"width,omitempty"`     // Nullable
	Height           *int    `gorm:"" json:"height,omitempty"`    // Nullable
	FileSize         *int64  `gorm:"" json:"file_size,omitempty"` // Nullable
	Format           *string `gorm:"" json:"format,omitempty"`    // Nullable
	CreatedAt        int64   `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Jobs []Job `gorm:"foreignKey:ImageID" json:"jobs,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Image) TableName() string {
	return "images"
}
