package services

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/platform/apierr"
	"github.com/courseagent/backend/internal/platform/logger"
	"github.com/courseagent/backend/internal/rag"
)

// memoryStore is an in-memory chunk store with the same observable
// contract as the Postgres-backed one: substring-style lexical match,
// L2 distance ranking with id tie-break.
type memoryStore struct {
	chunks []storedChunk
}

type storedChunk struct {
	id        int64
	lessonID  uuid.UUID
	content   string
	embedding []float32
}

func (m *memoryStore) LexicalCandidates(_ context.Context, queryText string, limit int) ([]rag.Candidate, error) {
	var out []rag.Candidate
	for _, c := range m.chunks {
		if len(out) >= limit {
			break
		}
		for _, term := range strings.Fields(strings.ToLower(queryText)) {
			if strings.Contains(strings.ToLower(c.content), term) {
				out = append(out, rag.Candidate{ChunkID: c.id, LessonID: c.lessonID, Content: c.content})
				break
			}
		}
	}
	return out, nil
}

func (m *memoryStore) VectorRank(_ context.Context, queryVec domain.Vector, candidateIDs []int64, k int) ([]rag.Hit, error) {
	allowed := map[int64]bool{}
	for _, id := range candidateIDs {
		allowed[id] = true
	}

	var hits []rag.Hit
	for _, c := range m.chunks {
		if candidateIDs != nil && !allowed[c.id] {
			continue
		}
		hits = append(hits, rag.Hit{
			ChunkID:  c.id,
			LessonID: c.lessonID,
			Content:  c.content,
			Distance: l2(queryVec, c.embedding),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func l2(a domain.Vector, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

type staticTitles struct {
	course string
	lesson string
}

func (s *staticTitles) TitlesForLesson(_ context.Context, _ uuid.UUID) (string, string, error) {
	return s.course, s.lesson, nil
}

// fixedEmbedder maps known texts to fixed vectors.
type fixedEmbedder struct {
	vectors map[string][]float32
	def     []float32
}

func (f *fixedEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		if v, ok := f.vectors[in]; ok {
			out[i] = v
		} else {
			out[i] = f.def
		}
	}
	return out, nil
}

type echoGenerator struct {
	gotUser string
}

func (g *echoGenerator) GenerateText(_ context.Context, _ string, user string) (string, error) {
	g.gotUser = user
	return "Plants convert sunlight into chemical energy [chunk 1].", nil
}

func svcLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// End-to-end read path: a paraphrased question with no lexical overlap
// must fall back to full-corpus vector ranking and still produce a
// grounded, cited answer.
func TestAnswerFallbackScenario(t *testing.T) {
	lessonID := uuid.New()
	store := &memoryStore{chunks: []storedChunk{
		{id: 1, lessonID: lessonID, content: "Photosynthesis uses sunlight...", embedding: []float32{1, 0, 0}},
		{id: 2, lessonID: lessonID, content: "Chlorophyll absorbs...", embedding: []float32{0, 1, 0}},
	}}

	log := svcLogger(t)
	query := "How do organisms convert light?"
	embedder := &fixedEmbedder{
		vectors: map[string][]float32{query: {0.9, 0.1, 0}},
	}
	gen := &echoGenerator{}

	svc := NewAnswerService(
		log,
		embedder,
		nil,
		"test-model",
		rag.NewRetriever(store, log),
		rag.NewAssembler(&staticTitles{course: "Biology 101", lesson: "Photosynthesis"}, IsRecordNotFound, log),
		rag.NewSynthesizer(gen, log),
		10,
	)

	ans, err := svc.Answer(context.Background(), query)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	// Both chunks returned, closest first.
	if len(ans.Citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(ans.Citations))
	}
	if ans.Citations[0] != "Biology 101 ▸ Photosynthesis [chunk 1]" {
		t.Fatalf("citation 0 = %q", ans.Citations[0])
	}
	if ans.Citations[1] != "Biology 101 ▸ Photosynthesis [chunk 2]" {
		t.Fatalf("citation 1 = %q", ans.Citations[1])
	}

	// Both context blocks reached the generator, in rank order.
	if !strings.Contains(gen.gotUser, "Photosynthesis uses sunlight...") ||
		!strings.Contains(gen.gotUser, "Chlorophyll absorbs...") {
		t.Fatalf("generator prompt missing context blocks: %q", gen.gotUser)
	}

	// Answer carries at least one inline marker matching a returned id.
	marker := regexp.MustCompile(`\[chunk (\d+)\]`)
	matches := marker.FindStringSubmatch(ans.Text)
	if matches == nil {
		t.Fatalf("answer has no [chunk N] marker: %q", ans.Text)
	}
	if matches[1] != "1" && matches[1] != "2" {
		t.Fatalf("marker references unknown chunk %s", matches[1])
	}
}

func TestAnswerKeywordPathRestrictsCandidates(t *testing.T) {
	lessonID := uuid.New()
	store := &memoryStore{chunks: []storedChunk{
		{id: 1, lessonID: lessonID, content: "Photosynthesis uses sunlight...", embedding: []float32{1, 0, 0}},
		{id: 2, lessonID: lessonID, content: "Mitochondria produce ATP...", embedding: []float32{0.99, 0.01, 0}},
	}}

	log := svcLogger(t)
	query := "photosynthesis basics"
	embedder := &fixedEmbedder{vectors: map[string][]float32{query: {1, 0, 0}}}

	svc := NewAnswerService(
		log,
		embedder,
		nil,
		"test-model",
		rag.NewRetriever(store, log),
		rag.NewAssembler(&staticTitles{course: "Biology 101", lesson: "Photosynthesis"}, IsRecordNotFound, log),
		rag.NewSynthesizer(&echoGenerator{}, log),
		10,
	)

	ans, err := svc.Answer(context.Background(), query)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	// Chunk 2 is vector-close but lexically disjoint; the prefilter
	// must exclude it.
	if len(ans.Citations) != 1 || !strings.Contains(ans.Citations[0], "[chunk 1]") {
		t.Fatalf("citations = %v, want only chunk 1", ans.Citations)
	}
}

func TestAnswerRejectsEmptyQuery(t *testing.T) {
	log := svcLogger(t)
	svc := NewAnswerService(log, &fixedEmbedder{def: []float32{0}}, nil, "m",
		rag.NewRetriever(&memoryStore{}, log),
		rag.NewAssembler(&staticTitles{}, IsRecordNotFound, log),
		rag.NewSynthesizer(&echoGenerator{}, log),
		10,
	)
	_, err := svc.Answer(context.Background(), "   ")
	if !apierr.Is(err, apierr.CodeInvalidInput) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}
