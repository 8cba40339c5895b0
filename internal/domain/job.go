package domain

import "time"

// JobStatus represents the status of a style training job.
// Values include JobStatusQueued, JobStatusRunning, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// TrainingJob represents one queued style training run and its progress metadata.
// Only the pipeline orchestrator mutates a job after enqueue; the queue runs each
// job exactly once (no automatic retry).
type TrainingJob struct {
	ID           string      `gorm:"type:text;primaryKey" json:"id"`
	UserID       string      `gorm:"type:text;not null;index" json:"user_id"`
	VideoURLs    StringArray `gorm:"type:text" json:"video_urls"`
	IsRetraining bool        `gorm:"default:false" json:"is_retraining"`
	Status       JobStatus   `gorm:"default:queued;index" json:"status"`
	Progress     int         `gorm:"default:0" json:"progress"`
	Log          StringArray `gorm:"type:text" json:"log"`
	Error        string      `json:"error,omitempty"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName returns the database table name for TrainingJob.
func (TrainingJob) TableName() string {
	return "training_jobs"
}
