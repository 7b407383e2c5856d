package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/models"
)

// JobFilter holds the optional filters for the job listing endpoint. Empty
// fields are not applied.
type JobFilter struct {
	Status string
	RoomID string
}

// ListJobs returns jobs newest-first, optionally narrowed by status and room.
// The filter combination is dynamic, so the query is assembled with squirrel
// rather than chained GORM conditionals.
func ListJobs(db *gorm.DB, filter JobFilter) ([]models.Job, error) {
	builder := sq.Select("*").From("jobs").OrderBy("created_at DESC, id DESC")

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.RoomID != "" {
		builder = builder.Where(sq.Eq{"room_id": filter.RoomID})
	}
	if db.Dialector.Name() == "postgres" {
		builder = builder.PlaceholderFormat(sq.Dollar)
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build job listing query: %w", err)
	}

	var jobs []models.Job
	if err := db.Raw(sqlStr, args...).Scan(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}
