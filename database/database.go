package database

// Job lifecycle states. A job only ever moves forward:
// queued -> in_progress -> completed | error.
const (
	StatusQueued     = "queued"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusError      = "error"
)
