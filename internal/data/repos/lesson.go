package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/platform/logger"
)

// LessonTitles carries the metadata the assembler joins back for
// citation formatting.
type LessonTitles struct {
	CourseTitle string
	LessonTitle string
}

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *domain.Lesson) (*domain.Lesson, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Lesson, error)
	AttachTranscript(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, transcriptKey string) error
	// TitlesForLesson returns gorm.ErrRecordNotFound when the lesson
	// does not exist.
	TitlesForLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*LessonTitles, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *domain.Lesson) (*domain.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(lesson).Error; err != nil {
		return nil, err
	}
	return lesson, nil
}

func (r *lessonRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out domain.Lesson
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *lessonRepo) AttachTranscript(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, transcriptKey string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Lesson{}).
		Where("id = ?", lessonID).
		Updates(map[string]interface{}{
			"transcript_key": transcriptKey,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *lessonRepo) TitlesForLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*LessonTitles, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out LessonTitles
	res := transaction.WithContext(ctx).Raw(
		`SELECT c.title AS course_title, l.title AS lesson_title
		 FROM lesson l JOIN course c ON l.course_id = c.id
		 WHERE l.id = ?`,
		lessonID,
	).Scan(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &out, nil
}
