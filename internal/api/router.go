package api

import (
	"github.com/gin-gonic/gin"

	"github.com/creatorly/styletrain/internal/api/handler"
	"github.com/creatorly/styletrain/internal/api/middleware"
	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/queue"
	"github.com/creatorly/styletrain/internal/repository"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	cfg *config.ServerConfig,
	jobs *repository.JobRepository,
	styles *repository.StyleRepository,
	q *queue.Queue,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(q)
	trainingHandler := handler.NewTrainingHandler(jobs, styles, q)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		style := v1.Group("/style")
		{
			style.POST("/train", trainingHandler.Train)
			style.GET("/jobs", trainingHandler.ListJobs)
			style.GET("/jobs/:id", trainingHandler.GetJob)
			style.GET("/profiles/:userId", trainingHandler.GetProfile)
		}
	}

	return r
}
