package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/creatorly/styletrain/internal/domain"
)

// JobRepository handles training job persistence.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new training job record.
func (r *JobRepository) Create(ctx context.Context, job *domain.TrainingJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a training job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.TrainingJob, error) {
	var job domain.TrainingJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkRunning transitions a job to running and stamps the start time.
func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.TrainingJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.JobStatusRunning,
			"started_at": &now,
		}).Error
}

// UpdateProgress sets the job's progress percentage and appends a log line.
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, progress int, logLine string) error {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"progress": progress,
	}
	if logLine != "" {
		updates["log"] = append(job.Log, logLine)
	}
	return r.db.WithContext(ctx).Model(&domain.TrainingJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AppendLog appends a free-text log line without touching progress.
func (r *JobRepository) AppendLog(ctx context.Context, id string, logLine string) error {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&domain.TrainingJob{}).
		Where("id = ?", id).
		Update("log", append(job.Log, logLine)).Error
}

// MarkCompleted transitions a job to completed at 100% progress.
func (r *JobRepository) MarkCompleted(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.TrainingJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusCompleted,
			"progress":     100,
			"completed_at": &now,
		}).Error
}

// MarkFailed transitions a job to failed with the terminal error message.
// The queue's single-attempt policy means no further mutation follows.
func (r *JobRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.TrainingJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusFailed,
			"error":        errMsg,
			"completed_at": &now,
		}).Error
}

// ListByUser retrieves a user's jobs, newest first.
func (r *JobRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.TrainingJob, error) {
	var jobs []domain.TrainingJob
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
