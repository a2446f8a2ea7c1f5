package app

import (
	internalhttp "github.com/courseagent/backend/internal/http"
	"github.com/courseagent/backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, handlerset Handlers) *internalhttp.Server {
	return internalhttp.NewServer(internalhttp.RouterConfig{
		Log:           log,
		HealthHandler: handlerset.Health,
		ChatHandler:   handlerset.Chat,
		IngestHandler: handlerset.Ingest,
		LessonHandler: handlerset.Lesson,
	})
}
