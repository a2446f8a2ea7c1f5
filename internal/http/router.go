package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/courseagent/backend/internal/http/handlers"
	httpMW "github.com/courseagent/backend/internal/http/middleware"
	"github.com/courseagent/backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler *httpH.HealthHandler
	ChatHandler   *httpH.ChatHandler
	IngestHandler *httpH.IngestHandler
	LessonHandler *httpH.LessonHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware("courseagent"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.ChatHandler != nil {
			api.POST("/chat", cfg.ChatHandler.Chat)
		}

		if cfg.IngestHandler != nil {
			api.POST("/ingest/catalog", cfg.IngestHandler.IngestCatalog)
		}

		if cfg.LessonHandler != nil {
			api.POST("/lessons/:id/index_html", cfg.LessonHandler.IndexHTML)
			api.POST("/lessons/:id/transcribe", cfg.LessonHandler.Transcribe)
		}
	}

	return r
}
