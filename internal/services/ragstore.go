package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseagent/backend/internal/data/repos"
	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/rag"
)

// ragChunkStore adapts ChunkRepo to the retriever's store port.
type ragChunkStore struct {
	chunks repos.ChunkRepo
}

func NewRagChunkStore(chunks repos.ChunkRepo) rag.Store {
	return &ragChunkStore{chunks: chunks}
}

func (s *ragChunkStore) LexicalCandidates(ctx context.Context, queryText string, limit int) ([]rag.Candidate, error) {
	rows, err := s.chunks.LexicalCandidates(ctx, nil, queryText, limit)
	if err != nil {
		return nil, err
	}
	out := make([]rag.Candidate, len(rows))
	for i, r := range rows {
		out[i] = rag.Candidate{ChunkID: r.ID, LessonID: r.LessonID, Content: r.Content}
	}
	return out, nil
}

func (s *ragChunkStore) VectorRank(ctx context.Context, queryVec domain.Vector, candidateIDs []int64, k int) ([]rag.Hit, error) {
	rows, err := s.chunks.VectorRank(ctx, nil, queryVec, candidateIDs, k)
	if err != nil {
		return nil, err
	}
	out := make([]rag.Hit, len(rows))
	for i, r := range rows {
		out[i] = rag.Hit{ChunkID: r.ID, LessonID: r.LessonID, Content: r.Content, Distance: r.Distance}
	}
	return out, nil
}

// ragTitleSource adapts LessonRepo to the assembler's metadata port.
type ragTitleSource struct {
	lessons repos.LessonRepo
}

func NewRagTitleSource(lessons repos.LessonRepo) rag.TitleSource {
	return &ragTitleSource{lessons: lessons}
}

func (s *ragTitleSource) TitlesForLesson(ctx context.Context, lessonID uuid.UUID) (string, string, error) {
	titles, err := s.lessons.TitlesForLesson(ctx, nil, lessonID)
	if err != nil {
		return "", "", err
	}
	return titles.CourseTitle, titles.LessonTitle, nil
}

// IsRecordNotFound distinguishes a missing row from a store failure so
// the assembler can classify the error correctly.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
