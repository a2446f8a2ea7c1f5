package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseagent/backend/internal/data/repos"
	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/ingestion/chunker"
	"github.com/courseagent/backend/internal/ingestion/extractor"
	"github.com/courseagent/backend/internal/platform/apierr"
	"github.com/courseagent/backend/internal/platform/gcp"
	"github.com/courseagent/backend/internal/platform/logger"
)

// CatalogEntry is one crawled lesson reference. Crawling itself lives
// outside this service; callers post the already-extracted catalog.
type CatalogEntry struct {
	CourseTitle string `json:"course_title"`
	LessonTitle string `json:"lesson_title"`
	URL         string `json:"url"`
	HTMLKey     string `json:"html_key,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
}

type IngestService interface {
	// IngestCatalog upserts courses by title and inserts lesson rows.
	// Returns the number of lessons inserted.
	IngestCatalog(ctx context.Context, baseURL string, entries []CatalogEntry) (int, error)
	// IndexHTML strips the lesson HTML to text, chunks, embeds, and
	// replaces the lesson's html-sourced chunks in one transaction.
	// Returns the number of chunks indexed.
	IndexHTML(ctx context.Context, lessonID uuid.UUID, htmlText string) (int, error)
}

type ingestService struct {
	log      *logger.Logger
	db       *gorm.DB
	courses  repos.CourseRepo
	lessons  repos.LessonRepo
	chunks   repos.ChunkRepo
	embedder Embedder
	bucket   gcp.BucketService // nil when object storage is not configured
	window   int
}

func NewIngestService(
	baseLog *logger.Logger,
	db *gorm.DB,
	courses repos.CourseRepo,
	lessons repos.LessonRepo,
	chunks repos.ChunkRepo,
	embedder Embedder,
	bucket gcp.BucketService,
	window int,
) IngestService {
	if window <= 0 {
		window = domain.ChunkWindowSize
	}
	return &ingestService{
		log:      baseLog.With("service", "IngestService"),
		db:       db,
		courses:  courses,
		lessons:  lessons,
		chunks:   chunks,
		embedder: embedder,
		bucket:   bucket,
		window:   window,
	}
}

func (s *ingestService) IngestCatalog(ctx context.Context, baseURL string, entries []CatalogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	ingested := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if strings.TrimSpace(entry.CourseTitle) == "" || strings.TrimSpace(entry.LessonTitle) == "" {
				return apierr.New(http.StatusBadRequest, apierr.CodeInvalidInput,
					fmt.Errorf("catalog entry missing course or lesson title"))
			}

			course, err := s.courses.UpsertByTitle(ctx, tx, entry.CourseTitle, baseURL)
			if err != nil {
				return fmt.Errorf("upsert course %q: %w", entry.CourseTitle, err)
			}

			if _, err := s.lessons.Create(ctx, tx, &domain.Lesson{
				CourseID: course.ID,
				Title:    entry.LessonTitle,
				URL:      entry.URL,
				HTMLKey:  entry.HTMLKey,
				VideoURL: entry.VideoURL,
			}); err != nil {
				if repos.IsForeignKeyViolation(err) {
					return apierr.New(http.StatusConflict, apierr.CodeInvalidInput,
						fmt.Errorf("lesson %q references missing course: %w", entry.LessonTitle, err))
				}
				return fmt.Errorf("insert lesson %q: %w", entry.LessonTitle, err)
			}
			ingested++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("catalog ingested", "lessons", ingested)
	return ingested, nil
}

func (s *ingestService) IndexHTML(ctx context.Context, lessonID uuid.UUID, htmlText string) (int, error) {
	lesson, err := s.lessons.GetByID(ctx, nil, lessonID)
	if err != nil {
		if IsRecordNotFound(err) {
			return 0, apierr.New(http.StatusNotFound, apierr.CodeNotFound, fmt.Errorf("lesson %s not found", lessonID))
		}
		return 0, apierr.New(http.StatusServiceUnavailable, apierr.CodeStoreUnavailable, fmt.Errorf("load lesson: %w", err))
	}

	text := extractor.TextFromHTML(htmlText)
	if text == "" {
		return 0, apierr.New(http.StatusBadRequest, apierr.CodeInvalidInput, fmt.Errorf("lesson HTML contains no text"))
	}

	// Archive the raw page so re-indexing never depends on the caller
	// still having it.
	if s.bucket != nil {
		key := fmt.Sprintf("html/%s.html", lessonID)
		if err := s.bucket.UploadText(ctx, key, htmlText); err != nil {
			s.log.Warn("failed to archive lesson HTML", "lesson_id", lessonID, "error", err)
		}
	}

	return s.indexText(ctx, lesson.ID, text, domain.SourceHTML)
}

// indexText chunks, embeds, and atomically replaces the lesson's
// chunks from the given source.
func (s *ingestService) indexText(ctx context.Context, lessonID uuid.UUID, text string, source domain.ChunkSource) (int, error) {
	parts, err := chunker.Split(text, s.window)
	if err != nil {
		return 0, apierr.New(http.StatusBadRequest, apierr.CodeInvalidInput, err)
	}
	if len(parts) == 0 {
		return 0, nil
	}

	vecs, err := s.embedder.Embed(ctx, parts)
	if err != nil {
		return 0, err
	}
	if len(vecs) != len(parts) {
		return 0, apierr.New(http.StatusBadGateway, apierr.CodeEmbeddingFailed,
			fmt.Errorf("expected %d embeddings, got %d", len(parts), len(vecs)))
	}

	chunks := make([]*domain.Chunk, len(parts))
	for i := range parts {
		chunks[i] = &domain.Chunk{
			LessonID:  lessonID,
			Content:   parts[i],
			Embedding: domain.Vector(vecs[i]),
			Source:    source,
		}
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.chunks.ReplaceForLesson(ctx, tx, lessonID, source, chunks)
	}); err != nil {
		return 0, apierr.New(http.StatusServiceUnavailable, apierr.CodeStoreUnavailable,
			fmt.Errorf("persist %d chunks for lesson %s: %w", len(chunks), lessonID, err))
	}

	s.log.Info("lesson indexed", "lesson_id", lessonID, "source", source, "chunks", len(chunks))
	return len(chunks), nil
}
