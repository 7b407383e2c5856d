package models

// Property represents a physical listing that owns a collection of rooms.
// It corresponds to the 'properties' table.
type Property struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	UserID    string  `gorm:"not null;index" json:"user_id"`
	Name      string  `gorm:"not null" json:"name"`
	Address   *string `gorm:"" json:"address,omitempty"` // Nullable
	CreatedAt int64   `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Rooms []Room `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"rooms,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Property) TableName() string {
	return "properties"
}
