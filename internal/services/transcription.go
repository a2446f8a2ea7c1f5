package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseagent/backend/internal/data/repos"
	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/platform/apierr"
	"github.com/courseagent/backend/internal/platform/gcp"
	"github.com/courseagent/backend/internal/platform/localmedia"
	"github.com/courseagent/backend/internal/platform/logger"
)

// TranscriptionService turns a lesson's video into indexed transcript
// chunks: download, audio extraction, speech-to-text, transcript
// archival, then the same chunk/embed/replace path HTML uses.
type TranscriptionService interface {
	TranscribeLesson(ctx context.Context, lessonID uuid.UUID) (int, error)
}

type transcriptionService struct {
	log     *logger.Logger
	db      *gorm.DB
	lessons repos.LessonRepo
	ingest  *ingestService
	media   localmedia.Tools
	speech  gcp.Speech
	bucket  gcp.BucketService
	httpc   *http.Client
}

func NewTranscriptionService(
	baseLog *logger.Logger,
	db *gorm.DB,
	lessons repos.LessonRepo,
	ingest IngestService,
	media localmedia.Tools,
	speech gcp.Speech,
	bucket gcp.BucketService,
) (TranscriptionService, error) {
	concrete, ok := ingest.(*ingestService)
	if !ok {
		return nil, fmt.Errorf("ingest service must be the standard implementation")
	}
	return &transcriptionService{
		log:     baseLog.With("service", "TranscriptionService"),
		db:      db,
		lessons: lessons,
		ingest:  concrete,
		media:   media,
		speech:  speech,
		bucket:  bucket,
		httpc:   &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

func (s *transcriptionService) TranscribeLesson(ctx context.Context, lessonID uuid.UUID) (int, error) {
	lesson, err := s.lessons.GetByID(ctx, nil, lessonID)
	if err != nil {
		if IsRecordNotFound(err) {
			return 0, apierr.New(http.StatusNotFound, apierr.CodeNotFound, fmt.Errorf("lesson %s not found", lessonID))
		}
		return 0, apierr.New(http.StatusServiceUnavailable, apierr.CodeStoreUnavailable, fmt.Errorf("load lesson: %w", err))
	}
	if lesson.VideoURL == "" {
		return 0, apierr.New(http.StatusBadRequest, apierr.CodeInvalidInput, fmt.Errorf("lesson %s has no video_url", lessonID))
	}

	workDir, err := os.MkdirTemp("", "transcribe-*")
	if err != nil {
		return 0, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	videoPath := filepath.Join(workDir, "video")
	if err := s.downloadTo(ctx, lesson.VideoURL, videoPath); err != nil {
		return 0, fmt.Errorf("download video: %w", err)
	}

	audioPath, err := s.media.ExtractAudio(ctx, videoPath, workDir)
	if err != nil {
		return 0, fmt.Errorf("extract audio: %w", err)
	}
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return 0, fmt.Errorf("read audio: %w", err)
	}

	transcript, err := s.speech.TranscribeAudioBytes(ctx, audio, "audio/flac")
	if err != nil {
		return 0, fmt.Errorf("transcribe: %w", err)
	}
	if transcript == "" {
		s.log.Warn("empty transcript", "lesson_id", lessonID)
		return 0, nil
	}

	key := fmt.Sprintf("transcripts/%s.txt", lessonID)
	if err := s.bucket.UploadText(ctx, key, transcript); err != nil {
		return 0, fmt.Errorf("store transcript: %w", err)
	}
	if err := s.lessons.AttachTranscript(ctx, nil, lessonID, key); err != nil {
		return 0, apierr.New(http.StatusServiceUnavailable, apierr.CodeStoreUnavailable, fmt.Errorf("attach transcript: %w", err))
	}

	count, err := s.ingest.indexText(ctx, lessonID, transcript, domain.SourceTranscript)
	if err != nil {
		return 0, err
	}

	s.log.Info("lesson transcribed", "lesson_id", lessonID, "transcript_key", key, "chunks", count)
	return count, nil
}

func (s *transcriptionService) downloadTo(ctx context.Context, url string, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
