package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creatorly/styletrain/internal/domain"
	"github.com/creatorly/styletrain/internal/queue"
	"github.com/creatorly/styletrain/internal/repository"
	"github.com/creatorly/styletrain/internal/service"
)

// TrainingHandler handles the style training endpoints.
type TrainingHandler struct {
	jobs   *repository.JobRepository
	styles *repository.StyleRepository
	queue  *queue.Queue
}

// NewTrainingHandler creates a new training handler.
func NewTrainingHandler(jobs *repository.JobRepository, styles *repository.StyleRepository, q *queue.Queue) *TrainingHandler {
	return &TrainingHandler{
		jobs:   jobs,
		styles: styles,
		queue:  q,
	}
}

// TrainRequest is the enqueue payload for a style training run.
type TrainRequest struct {
	UserID       string   `json:"user_id" binding:"required"`
	VideoURLs    []string `json:"video_urls" binding:"required"`
	IsRetraining bool     `json:"is_retraining"`
}

// Train handles POST /api/v1/style/train. Requests with fewer than three
// parseable video URLs are rejected up front; everything else is validated
// by the pipeline after enqueue.
func (h *TrainingHandler) Train(c *gin.Context) {
	var req TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	ids := service.ParseVideoIDs(req.VideoURLs)
	if len(ids) < service.MinTrainingVideos {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "At least 3 valid video URLs are required",
			"code":  string(domain.ErrInputValidation),
		})
		return
	}

	job := &domain.TrainingJob{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		VideoURLs:    req.VideoURLs,
		IsRetraining: req.IsRetraining,
		Status:       domain.JobStatusQueued,
	}
	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create training job",
		})
		return
	}

	if err := h.queue.Enqueue(job); err != nil {
		_ = h.jobs.MarkFailed(c.Request.Context(), job.ID, err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Training queue is full, try again later",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// GetJob handles GET /api/v1/style/jobs/:id.
func (h *TrainingHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobs handles GET /api/v1/style/jobs?user_id=...
func (h *TrainingHandler) ListJobs(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'user_id' is required"})
		return
	}

	jobs, err := h.jobs.ListByUser(c.Request.Context(), userID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetProfile handles GET /api/v1/style/profiles/:userId.
func (h *TrainingHandler) GetProfile(c *gin.Context) {
	profile, err := h.styles.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Style profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load style profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}
