package handlers

import (
	"github.com/jledbetter-dev/stagepilot/database"
	"github.com/jledbetter-dev/stagepilot/models"
)

// View types shape the API responses explicitly instead of exposing ORM rows.

// StagingSettings echoes the knobs that produced a staged result
type StagingSettings struct {
	StylePreset     string `json:"style_preset"`
	FixWhiteBalance bool   `json:"fix_white_balance"`
	WallDecorations bool   `json:"wall_decorations"`
	IncludeTV       bool   `json:"include_tv"`
}

// ImageView is the public shape of an uploaded image. LatestResultURL and
// LatestSettings carry the image's most recent completed staging when the
// image was loaded with its jobs.
type ImageView struct {
	ID               string           `json:"id"`
	RoomID           *string          `json:"room_id,omitempty"`
	OriginalFilename string           `json:"original_filename"`
	OriginalURL      string           `json:"original_url"`
	RoomType         *string          `json:"room_type,omitempty"`
	Width            *int             `json:"width,omitempty"`
	Height           *int             `json:"height,omitempty"`
	FileSize         *int64           `json:"file_size,omitempty"`
	Format           *string          `json:"format,omitempty"`
	CreatedAt        int64            `json:"created_at"`
	LatestResultURL  *string          `json:"latest_result_url,omitempty"`
	LatestSettings   *StagingSettings `json:"latest_settings,omitempty"`
}

// JobView is the public shape of a staging job. OriginalImageURL is joined
// in for the polling endpoint.
type JobView struct {
	ID                    string  `json:"id"`
	UserID                string  `json:"user_id"`
	ImageID               string  `json:"image_id"`
	RoomID                *string `json:"room_id,omitempty"`
	RoomType              string  `json:"room_type"`
	StylePreset           string  `json:"style_preset"`
	FixWhiteBalance       bool    `json:"fix_white_balance"`
	WallDecorations       bool    `json:"wall_decorations"`
	IncludeTV             bool    `json:"include_tv"`
	Status                string  `json:"status"`
	ProgressPercent       float64 `json:"progress_percent"`
	CurrentStep           *string `json:"current_step,omitempty"`
	ErrorMessage          *string `json:"error_message,omitempty"`
	ResultURL             *string `json:"result_url,omitempty"`
	OriginalImageURL      *string `json:"original_image_url,omitempty"`
	GenerationTimeSeconds *int    `json:"generation_time_seconds,omitempty"`
	CreatedAt             int64   `json:"created_at"`
	StartedAt             *int64  `json:"started_at,omitempty"`
	CompletedAt           *int64  `json:"completed_at,omitempty"`
}

// JobListResponse wraps the job listing
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// RoomView is the public shape of a room with its enriched images
type RoomView struct {
	ID               string      `json:"id"`
	PropertyID       string      `json:"property_id"`
	Name             string      `json:"name"`
	RoomType         string      `json:"room_type"`
	ReferenceImageID *string     `json:"reference_image_id,omitempty"`
	Images           []ImageView `json:"images"`
	CreatedAt        int64       `json:"created_at"`
}

// PropertyView is the public shape of a property
type PropertyView struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// PropertyWithRoomsView nests the full room/image tree under a property
type PropertyWithRoomsView struct {
	PropertyView
	Rooms []RoomView `json:"rooms"`
}

func newImageView(img *models.Image) ImageView {
	view := ImageView{
		ID:               img.ID,
		RoomID:           img.RoomID,
		OriginalFilename: img.OriginalFilename,
		OriginalURL:      img.OriginalURL,
		RoomType:         img.RoomType,
		Width:            img.Width,
		Height:           img.Height,
		FileSize:         img.FileSize,
		Format:           img.Format,
		CreatedAt:        img.CreatedAt,
	}

	// Jobs, when preloaded, arrive newest first; the first completed one
	// with a result is the image's current staged appearance
	for i := range img.Jobs {
		job := &img.Jobs[i]
		if job.Status != database.StatusCompleted || job.ResultURL == nil || *job.ResultURL == "" {
			continue
		}
		view.LatestResultURL = job.ResultURL
		view.LatestSettings = &StagingSettings{
			StylePreset:     job.StylePreset,
			FixWhiteBalance: job.FixWhiteBalance,
			WallDecorations: job.WallDecorations,
			IncludeTV:       job.IncludeTV,
		}
		break
	}
	return view
}

func newJobView(job *models.Job, originalImageURL *string) JobView {
	return JobView{
		ID:                    job.ID,
		UserID:                job.UserID,
		ImageID:               job.ImageID,
		RoomID:                job.RoomID,
		RoomType:              job.RoomType,
		StylePreset:           job.StylePreset,
		FixWhiteBalance:       job.FixWhiteBalance,
		WallDecorations:       job.WallDecorations,
		IncludeTV:             job.IncludeTV,
		Status:                job.Status,
		ProgressPercent:       job.ProgressPercent,
		CurrentStep:           job.CurrentStep,
		ErrorMessage:          job.ErrorMessage,
		ResultURL:             job.ResultURL,
		OriginalImageURL:      originalImageURL,
		GenerationTimeSeconds: job.GenerationTimeSeconds,
		CreatedAt:             job.CreatedAt,
		StartedAt:             job.StartedAt,
		CompletedAt:           job.CompletedAt,
	}
}

func newRoomView(room *models.Room) RoomView {
	images := make([]ImageView, 0, len(room.Images))
	for i := range room.Images {
		images = append(images, newImageView(&room.Images[i]))
	}
	return RoomView{
		ID:               room.ID,
		PropertyID:       room.PropertyID,
		Name:             room.Name,
		RoomType:         room.RoomType,
		ReferenceImageID: room.ReferenceImageID,
		Images:           images,
		CreatedAt:        room.CreatedAt,
	}
}

func newPropertyView(prop *models.Property) PropertyView {
	return PropertyView{
		ID:        prop.ID,
		UserID:    prop.UserID,
		Name:      prop.Name,
		Address:   prop.Address,
		CreatedAt: prop.CreatedAt,
	}
}
