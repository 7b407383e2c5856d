package models

// Job is one staging execution attempt against one uploaded image.
//
// Analysis, PlacementPlan and GenerationPrompt are persisted deliberately:
// they become the consistency seed for later jobs targeting other images of
// the same room. RetryCount is carried on the row but never incremented or
// consulted; re-running a failed job is an operational concern (submit a new
// job), not an automatic one.
type Job struct {
	ID              string  `gorm:"primaryKey" json:"id"`
	UserID          string  `gorm:"not null;index" json:"user_id"`
	ImageID         string  `gorm:"not null;index" json:"image_id"`
	RoomID          *string `gorm:"index" json:"room_id,omitempty"` // Nullable
	RoomType        string  `gorm:"not null" json:"room_type"`
	StylePreset     string  `gorm:"not null" json:"style_preset"`
	FixWhiteBalance bool    `gorm:"not null;default:true" json:"fix_white_balance"`
	WallDecorations bool    `gorm:"not null;default:true" json:"wall_decorations"`
	IncludeTV       bool    `gorm:"not null;default:false" json:"include_tv"`

	Status          string  `gorm:"not null;default:queued;index" json:"status"`
	RetryCount      int     `gorm:"not null;default:0" json:"retry_count"`
	ErrorMessage    *string `gorm:"" json:"error_message,omitempty"` // Nullable
	ProgressPercent float64 `gorm:"not null;default:0" json:"progress_percent"`
	CurrentStep     *string `gorm:"" json:"current_step,omitempty"` // Nullable

	GenerationTimeSeconds *int   `gorm:"" json:"generation_time_seconds,omitempty"` // Nullable
	CreatedAt             int64  `gorm:"autoCreateTime;index" json:"created_at"`
	StartedAt             *int64 `gorm:"" json:"started_at,omitempty"`   // Nullable, Unix timestamp
	CompletedAt           *int64 `gorm:"" json:"completed_at,omitempty"` // Nullable, Unix timestamp

	ResultURL *string `gorm:"" json:"result_url,omitempty"` // Nullable

	// Persisted intermediate artifacts
	Analysis         *string `gorm:"" json:"analysis,omitempty"`          // Nullable
	PlacementPlan    *string `gorm:"" json:"placement_plan,omitempty"`    // Nullable
	GenerationPrompt *string `gorm:"" json:"generation_prompt,omitempty"` // Nullable
}

// TableName explicitly sets the table name for GORM.
func (Job) TableName() string {
	return "jobs"
}
