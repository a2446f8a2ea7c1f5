package app

import (
	"github.com/courseagent/backend/internal/http/handlers"
	"github.com/courseagent/backend/internal/platform/logger"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Chat   *handlers.ChatHandler
	Ingest *handlers.IngestHandler
	Lesson *handlers.LessonHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: handlers.NewHealthHandler(),
		Chat:   handlers.NewChatHandler(serviceset.Answer),
		Ingest: handlers.NewIngestHandler(serviceset.Ingest),
		Lesson: handlers.NewLessonHandler(serviceset.Ingest, serviceset.Transcription),
	}
}
