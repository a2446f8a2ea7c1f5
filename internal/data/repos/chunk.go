package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/platform/logger"
)

// Candidate is a lexical-prefilter row: a chunk whose content matched
// the query under full-text search, before any ranking.
type Candidate struct {
	ID       int64     `gorm:"column:id"`
	LessonID uuid.UUID `gorm:"column:lesson_id"`
	Content  string    `gorm:"column:content"`
}

// Ranked is a vector-ranked row. Distance is the L2 distance between
// the stored embedding and the query vector; lower is more similar.
type Ranked struct {
	ID       int64     `gorm:"column:id"`
	LessonID uuid.UUID `gorm:"column:lesson_id"`
	Content  string    `gorm:"column:content"`
	Distance float64   `gorm:"column:distance"`
}

type ChunkRepo interface {
	// CreateBatch appends chunks. Callers that need all-or-nothing
	// semantics wrap the call in a transaction.
	CreateBatch(ctx context.Context, tx *gorm.DB, chunks []*domain.Chunk) ([]*domain.Chunk, error)
	// ReplaceForLesson deletes the lesson's existing chunks from the
	// given source and inserts the new batch. Run inside one
	// transaction so a query never observes the lesson half-indexed.
	ReplaceForLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, source domain.ChunkSource, chunks []*domain.Chunk) error

	LexicalCandidates(ctx context.Context, tx *gorm.DB, queryText string, limit int) ([]Candidate, error)
	// VectorRank orders chunks by ascending embedding distance to
	// queryVec, ties broken by chunk id. Nil candidateIDs ranks the
	// whole corpus.
	VectorRank(ctx context.Context, tx *gorm.DB, queryVec domain.Vector, candidateIDs []int64, k int) ([]Ranked, error)

	CountForLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int64, error)
}

type chunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkRepo(db *gorm.DB, baseLog *logger.Logger) ChunkRepo {
	return &chunkRepo{db: db, log: baseLog.With("repo", "ChunkRepo")}
}

func (r *chunkRepo) CreateBatch(ctx context.Context, tx *gorm.DB, chunks []*domain.Chunk) ([]*domain.Chunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(chunks) == 0 {
		return []*domain.Chunk{}, nil
	}

	// Keep batches small because Content and Embedding are large.
	const batchSize = 100

	if err := transaction.WithContext(ctx).CreateInBatches(chunks, batchSize).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *chunkRepo) ReplaceForLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, source domain.ChunkSource, chunks []*domain.Chunk) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Where("lesson_id = ? AND source = ?", lessonID, source).
		Delete(&domain.Chunk{}).Error; err != nil {
		return err
	}
	_, err := r.CreateBatch(ctx, transaction, chunks)
	return err
}

func (r *chunkRepo) LexicalCandidates(ctx context.Context, tx *gorm.DB, queryText string, limit int) ([]Candidate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []Candidate
	if err := transaction.WithContext(ctx).Raw(
		`SELECT id, lesson_id, content
		 FROM chunk
		 WHERE to_tsvector('english', content) @@ plainto_tsquery('english', ?)
		 LIMIT ?`,
		queryText, limit,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chunkRepo) VectorRank(ctx context.Context, tx *gorm.DB, queryVec domain.Vector, candidateIDs []int64, k int) ([]Ranked, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []Ranked
	if len(candidateIDs) == 0 {
		if err := transaction.WithContext(ctx).Raw(
			`SELECT id, lesson_id, content, (embedding <-> ?::vector) AS distance
			 FROM chunk
			 ORDER BY embedding <-> ?::vector ASC, id ASC
			 LIMIT ?`,
			queryVec, queryVec, k,
		).Scan(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	}

	if err := transaction.WithContext(ctx).Raw(
		`SELECT id, lesson_id, content, (embedding <-> ?::vector) AS distance
		 FROM chunk
		 WHERE id IN ?
		 ORDER BY embedding <-> ?::vector ASC, id ASC
		 LIMIT ?`,
		queryVec, candidateIDs, queryVec, k,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chunkRepo) CountForLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.Chunk{}).
		Where("lesson_id = ?", lessonID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
