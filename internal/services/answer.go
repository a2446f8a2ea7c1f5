package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/courseagent/backend/internal/clients/redis"
	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/platform/apierr"
	"github.com/courseagent/backend/internal/platform/logger"
	"github.com/courseagent/backend/internal/rag"
)

// DefaultTopK is how many chunks ground one answer.
const DefaultTopK = 10

// Embedder is the embedding collaborator: one vector per input text,
// order-preserving.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// AnswerService runs the read path: embed the question, retrieve and
// rank chunks, join citations, synthesize the answer.
type AnswerService interface {
	Answer(ctx context.Context, query string) (*rag.Answer, error)
}

type answerService struct {
	log         *logger.Logger
	embedder    Embedder
	embedCache  redis.EmbedCache // nil when redis is not configured
	cacheModel  string
	retriever   *rag.Retriever
	assembler   *rag.Assembler
	synthesizer *rag.Synthesizer
	topK        int
}

func NewAnswerService(
	baseLog *logger.Logger,
	embedder Embedder,
	embedCache redis.EmbedCache,
	cacheModel string,
	retriever *rag.Retriever,
	assembler *rag.Assembler,
	synthesizer *rag.Synthesizer,
	topK int,
) AnswerService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &answerService{
		log:         baseLog.With("service", "AnswerService"),
		embedder:    embedder,
		embedCache:  embedCache,
		cacheModel:  cacheModel,
		retriever:   retriever,
		assembler:   assembler,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

func (s *answerService) Answer(ctx context.Context, query string) (*rag.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidInput, fmt.Errorf("empty query"))
	}

	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.retriever.Retrieve(ctx, query, queryVec, s.topK)
	if err != nil {
		return nil, err
	}

	evidence, err := s.assembler.Assemble(ctx, hits)
	if err != nil {
		return nil, err
	}

	answer, err := s.synthesizer.Synthesize(ctx, query, evidence)
	if err != nil {
		return nil, err
	}

	s.log.Info("answered query", "hits", len(hits), "citations", len(answer.Citations))
	return answer, nil
}

func (s *answerService) embedQuery(ctx context.Context, query string) (domain.Vector, error) {
	if s.embedCache != nil {
		if vec, ok := s.embedCache.Get(ctx, s.cacheModel, query); ok {
			return domain.Vector(vec), nil
		}
	}

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeEmbeddingFailed,
			fmt.Errorf("expected 1 embedding, got %d", len(vecs)))
	}

	if s.embedCache != nil {
		s.embedCache.Put(ctx, s.cacheModel, query, vecs[0])
	}
	return domain.Vector(vecs[0]), nil
}
