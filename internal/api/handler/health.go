package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creatorly/styletrain/internal/queue"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	queue *queue.Queue
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(q *queue.Queue) *HealthHandler {
	return &HealthHandler{queue: q}
}

// Health returns the health status of the service and the queue backlog.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.queue != nil {
		resp["queue_backlog"] = h.queue.Backlog()
	}
	c.JSON(http.StatusOK, resp)
}
