package rag

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/courseagent/backend/internal/platform/apierr"
	"github.com/courseagent/backend/internal/platform/logger"
)

// TitleSource resolves the course and lesson titles a citation needs.
type TitleSource interface {
	TitlesForLesson(ctx context.Context, lessonID uuid.UUID) (courseTitle string, lessonTitle string, err error)
}

// NotFoundFunc reports whether a title lookup failed because the
// lesson row is missing, as opposed to the store being unreachable.
type NotFoundFunc func(error) bool

// Context is the assembled evidence for one query: the hits' content
// verbatim in hit order, and one citation per hit in the same order.
type Context struct {
	Blocks    []string
	Citations []string
}

// Assembler joins hits back to lesson and course metadata and formats
// citations. A missing lesson is a data-integrity violation and fails
// the whole request rather than silently dropping the citation.
type Assembler struct {
	titles     TitleSource
	isNotFound NotFoundFunc
	log        *logger.Logger
}

func NewAssembler(titles TitleSource, isNotFound NotFoundFunc, baseLog *logger.Logger) *Assembler {
	return &Assembler{
		titles:     titles,
		isNotFound: isNotFound,
		log:        baseLog.With("service", "Assembler"),
	}
}

// FormatCitation renders the externally observable citation string.
// The exact layout is a wire contract with downstream citation
// parsers; do not change it.
func FormatCitation(courseTitle string, lessonTitle string, chunkID int64) string {
	return fmt.Sprintf("%s ▸ %s [chunk %d]", courseTitle, lessonTitle, chunkID)
}

// Assemble expands hits into context blocks and citations. Title
// lookups run concurrently; output order always matches hit order.
func (a *Assembler) Assemble(ctx context.Context, hits []Hit) (*Context, error) {
	blocks := make([]string, len(hits))
	citations := make([]string, len(hits))

	g, gctx := errgroup.WithContext(ctx)
	for i, hit := range hits {
		g.Go(func() error {
			courseTitle, lessonTitle, err := a.titles.TitlesForLesson(gctx, hit.LessonID)
			if err != nil {
				if a.isNotFound != nil && a.isNotFound(err) {
					return apierr.New(http.StatusInternalServerError, apierr.CodeNotFound,
						fmt.Errorf("lesson %s referenced by chunk %d not found: %w", hit.LessonID, hit.ChunkID, err))
				}
				return apierr.New(http.StatusServiceUnavailable, apierr.CodeStoreUnavailable,
					fmt.Errorf("titles for lesson %s: %w", hit.LessonID, err))
			}
			blocks[i] = hit.Content
			citations[i] = FormatCitation(courseTitle, lessonTitle, hit.ChunkID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Context{Blocks: blocks, Citations: citations}, nil
}
