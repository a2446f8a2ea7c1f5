// Package rag implements the read path: hybrid retrieval over the
// chunk store, citation assembly, and answer synthesis.
package rag

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/platform/apierr"
	"github.com/courseagent/backend/internal/platform/logger"
)

// DefaultCandidateLimit bounds the lexical prefilter. 200 keeps the
// vector re-rank cheap while giving the prefilter enough recall.
const DefaultCandidateLimit = 200

// Candidate is a chunk that matched the query lexically, before any
// similarity ranking.
type Candidate struct {
	ChunkID  int64
	LessonID uuid.UUID
	Content  string
}

// Hit is one ranked retrieval result.
type Hit struct {
	ChunkID  int64
	LessonID uuid.UUID
	Content  string
	Distance float64
}

// Store is the read-side chunk store contract the retriever ranks
// against.
type Store interface {
	// LexicalCandidates returns up to limit chunks matching queryText
	// under full-text search. No ordering guarantee beyond "matches".
	LexicalCandidates(ctx context.Context, queryText string, limit int) ([]Candidate, error)
	// VectorRank returns up to k chunks ordered by ascending embedding
	// distance, ties broken by chunk id. Nil candidateIDs ranks the
	// whole corpus.
	VectorRank(ctx context.Context, queryVec domain.Vector, candidateIDs []int64, k int) ([]Hit, error)
}

// Retriever runs the two-stage search: a cheap lexical prefilter
// narrows the corpus, then vector similarity ranks what survived. A
// query with no lexical overlap at all (a pure paraphrase) falls back
// to ranking the whole corpus so retrieval never comes back empty just
// because the filter over-eliminated.
type Retriever struct {
	store          Store
	log            *logger.Logger
	candidateLimit int
}

func NewRetriever(store Store, baseLog *logger.Logger) *Retriever {
	return &Retriever{
		store:          store,
		log:            baseLog.With("service", "Retriever"),
		candidateLimit: DefaultCandidateLimit,
	}
}

// SetCandidateLimit overrides the lexical prefilter bound. Values
// below 1 are ignored.
func (r *Retriever) SetCandidateLimit(limit int) {
	if limit > 0 {
		r.candidateLimit = limit
	}
}

// Retrieve returns at most k hits ordered by ascending distance.
// Store failures propagate unmodified; retry policy belongs to the
// caller.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, queryVec domain.Vector, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidInput, fmt.Errorf("k must be positive, got %d", k))
	}

	candidates, err := r.store.LexicalCandidates(ctx, queryText, r.candidateLimit)
	if err != nil {
		return nil, apierr.New(http.StatusServiceUnavailable, apierr.CodeStoreUnavailable, fmt.Errorf("lexical candidates: %w", err))
	}

	if len(candidates) == 0 {
		r.log.Debug("no lexical candidates, falling back to full-corpus vector search", "k", k)
		hits, err := r.store.VectorRank(ctx, queryVec, nil, k)
		if err != nil {
			return nil, apierr.New(http.StatusServiceUnavailable, apierr.CodeStoreUnavailable, fmt.Errorf("vector rank (fallback): %w", err))
		}
		return hits, nil
	}

	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ChunkID
	}

	hits, err := r.store.VectorRank(ctx, queryVec, ids, k)
	if err != nil {
		return nil, apierr.New(http.StatusServiceUnavailable, apierr.CodeStoreUnavailable, fmt.Errorf("vector rank: %w", err))
	}
	r.log.Debug("hybrid retrieval complete", "candidates", len(candidates), "hits", len(hits), "k", k)
	return hits, nil
}
