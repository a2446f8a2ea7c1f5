package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/courseagent/backend/internal/platform/logger"
	"github.com/courseagent/backend/internal/rag"
	"github.com/courseagent/backend/internal/services"
)

type Services struct {
	Answer        services.AnswerService
	Ingest        services.IngestService
	Transcription services.TranscriptionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	retriever := rag.NewRetriever(services.NewRagChunkStore(reposet.Chunk), log)
	retriever.SetCandidateLimit(cfg.CandidateLimit)
	assembler := rag.NewAssembler(services.NewRagTitleSource(reposet.Lesson), services.IsRecordNotFound, log)
	synthesizer := rag.NewSynthesizer(clients.OpenAI, log)

	answer := services.NewAnswerService(
		log,
		clients.OpenAI,
		clients.EmbedCache,
		cfg.EmbedModel,
		retriever,
		assembler,
		synthesizer,
		cfg.RetrievalTopK,
	)

	ingest := services.NewIngestService(
		log,
		db,
		reposet.Course,
		reposet.Lesson,
		reposet.Chunk,
		clients.OpenAI,
		clients.GcpBucket,
		cfg.ChunkWindow,
	)

	// Transcription needs the full media pipeline; leave it unwired when
	// any piece is missing.
	var transcription services.TranscriptionService
	if clients.GcpBucket != nil && clients.GcpSpeech != nil && clients.Media != nil {
		t, err := services.NewTranscriptionService(
			log,
			db,
			reposet.Lesson,
			ingest,
			clients.Media,
			clients.GcpSpeech,
			clients.GcpBucket,
		)
		if err != nil {
			return Services{}, fmt.Errorf("init transcription service: %w", err)
		}
		transcription = t
	} else {
		log.Warn("Transcription service disabled, missing bucket, speech, or ffmpeg")
	}

	return Services{
		Answer:        answer,
		Ingest:        ingest,
		Transcription: transcription,
	}, nil
}
