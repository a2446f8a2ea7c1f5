package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/platform/logger"
)

type CourseRepo interface {
	// UpsertByTitle returns the existing course with this title or
	// creates one. Safe under concurrent ingestion: the unique index on
	// title plus ON CONFLICT DO NOTHING guarantees at most one row.
	UpsertByTitle(ctx context.Context, tx *gorm.DB, title string, url string) (*domain.Course, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) UpsertByTitle(ctx context.Context, tx *gorm.DB, title string, url string) (*domain.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	course := &domain.Course{Title: title, URL: url}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "title"}},
			DoNothing: true,
		}).
		Create(course).Error; err != nil {
		return nil, err
	}

	// On conflict the insert is a no-op and course.ID stays zero;
	// either way the row is fetched back by its natural key.
	var out domain.Course
	if err := transaction.WithContext(ctx).
		Where("title = ?", title).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out domain.Course
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
