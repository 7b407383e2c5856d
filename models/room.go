package models

// Room is a named space within a property. ReferenceImageID, when set, points
// at an image belonging to this room and acts as the room's consistency anchor:
// it is assigned automatically to the first image ever uploaded for the room
// and reassigned to the oldest remaining image if the current reference is
// deleted, so it never dangles.
type Room struct {
	ID               string  `gorm:"primaryKey" json:"id"`
	PropertyID       string  `gorm:"not null;index" json:"property_id"`
	Name             string  `gorm:"not null" json:"name"`
	RoomType         string  `gorm:"not null" json:"room_type"`
	ReferenceImageID *string `gorm:"" json:"reference_image_id,omitempty"` // Nullable
	CreatedAt        int64   `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Images []Image `gorm:"foreignKey:RoomID" json:"images,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Room) TableName() string {
	return "rooms"
}
