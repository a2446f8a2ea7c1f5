package repos_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseagent/backend/internal/data/repos"
	"github.com/courseagent/backend/internal/data/repos/testutil"
	"github.com/courseagent/backend/internal/domain"
)

// vec builds a full-width embedding with the given leading components.
func vec(lead ...float32) domain.Vector {
	v := make(domain.Vector, domain.EmbeddingDim)
	copy(v, lead)
	return v
}

func seedLesson(t *testing.T, tx *gorm.DB) uuid.UUID {
	t.Helper()
	log := testutil.Logger(t)
	ctx := context.Background()

	course, err := repos.NewCourseRepo(nil, log).UpsertByTitle(ctx, tx, "Plant Science", "https://example.edu")
	if err != nil {
		t.Fatalf("upsert course: %v", err)
	}
	lesson, err := repos.NewLessonRepo(nil, log).Create(ctx, tx, &domain.Lesson{
		CourseID: course.ID,
		Title:    "Photosynthesis",
	})
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return lesson.ID
}

func TestChunkCreateBatchAndCount(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	lessonID := seedLesson(t, tx)
	chunks := repos.NewChunkRepo(db, log)

	created, err := chunks.CreateBatch(ctx, tx, []*domain.Chunk{
		{LessonID: lessonID, Content: "Photosynthesis uses sunlight.", Embedding: vec(1), Source: domain.SourceHTML},
		{LessonID: lessonID, Content: "Chlorophyll absorbs light.", Embedding: vec(0, 1), Source: domain.SourceHTML},
	})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	for i, c := range created {
		if c.ID == 0 {
			t.Fatalf("chunk %d has no id after insert", i)
		}
	}
	// Serial ids follow insertion order.
	if created[0].ID >= created[1].ID {
		t.Fatalf("ids out of order: %d, %d", created[0].ID, created[1].ID)
	}

	count, err := chunks.CountForLesson(ctx, tx, lessonID)
	if err != nil {
		t.Fatalf("CountForLesson: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestChunkBatchIsAllOrNothing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	lessonID := seedLesson(t, tx)
	chunks := repos.NewChunkRepo(db, log)

	// Second row references a lesson that does not exist; the whole
	// batch must fail, leaving the first row unpersisted too. The
	// nested transaction scopes the failure to a savepoint so the test
	// tx stays usable.
	err := tx.Transaction(func(inner *gorm.DB) error {
		_, err := chunks.CreateBatch(ctx, inner, []*domain.Chunk{
			{LessonID: lessonID, Content: "valid", Embedding: vec(1), Source: domain.SourceHTML},
			{LessonID: uuid.New(), Content: "orphan", Embedding: vec(0, 1), Source: domain.SourceHTML},
		})
		return err
	})
	if err == nil {
		t.Fatal("expected batch insert to fail")
	}

	count, err := chunks.CountForLesson(ctx, tx, lessonID)
	if err != nil {
		t.Fatalf("CountForLesson: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0 after failed batch", count)
	}
}

func TestChunkLexicalCandidates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	lessonID := seedLesson(t, tx)
	chunks := repos.NewChunkRepo(db, log)

	if _, err := chunks.CreateBatch(ctx, tx, []*domain.Chunk{
		{LessonID: lessonID, Content: "Photosynthesis converts sunlight into chemical energy.", Embedding: vec(1), Source: domain.SourceHTML},
		{LessonID: lessonID, Content: "Mitochondria are the powerhouse of the cell.", Embedding: vec(0, 1), Source: domain.SourceHTML},
	}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	rows, err := chunks.LexicalCandidates(ctx, tx, "photosynthesis energy", 10)
	if err != nil {
		t.Fatalf("LexicalCandidates: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("candidates = %d, want 1", len(rows))
	}
	if rows[0].LessonID != lessonID {
		t.Fatalf("lesson_id = %s", rows[0].LessonID)
	}

	// A query with no lexical overlap matches nothing; the fallback
	// decision belongs to the retriever, not the store.
	rows, err = chunks.LexicalCandidates(ctx, tx, "quantum entanglement", 10)
	if err != nil {
		t.Fatalf("LexicalCandidates: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("candidates = %d, want 0", len(rows))
	}
}

func TestChunkVectorRank(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	lessonID := seedLesson(t, tx)
	chunks := repos.NewChunkRepo(db, log)

	created, err := chunks.CreateBatch(ctx, tx, []*domain.Chunk{
		{LessonID: lessonID, Content: "near", Embedding: vec(1), Source: domain.SourceHTML},
		{LessonID: lessonID, Content: "far", Embedding: vec(0, 5), Source: domain.SourceHTML},
		{LessonID: lessonID, Content: "nearest", Embedding: vec(0.9), Source: domain.SourceHTML},
	})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	query := vec(0.95)

	ranked, err := chunks.VectorRank(ctx, tx, query, nil, 2)
	if err != nil {
		t.Fatalf("VectorRank: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("ranked = %d, want 2", len(ranked))
	}
	if ranked[0].Content != "nearest" && ranked[0].Content != "near" {
		t.Fatalf("unexpected top hit %q", ranked[0].Content)
	}
	if ranked[0].Distance > ranked[1].Distance {
		t.Fatalf("distances out of order: %f > %f", ranked[0].Distance, ranked[1].Distance)
	}

	// Restricting to candidate ids must exclude closer chunks outside
	// the set.
	onlyFar := []int64{created[1].ID}
	ranked, err = chunks.VectorRank(ctx, tx, query, onlyFar, 10)
	if err != nil {
		t.Fatalf("VectorRank restricted: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Content != "far" {
		t.Fatalf("restricted rank = %+v, want only 'far'", ranked)
	}
}

func TestChunkReplaceForLesson(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	lessonID := seedLesson(t, tx)
	chunks := repos.NewChunkRepo(db, log)

	if _, err := chunks.CreateBatch(ctx, tx, []*domain.Chunk{
		{LessonID: lessonID, Content: "stale html chunk", Embedding: vec(1), Source: domain.SourceHTML},
		{LessonID: lessonID, Content: "transcript chunk", Embedding: vec(0, 1), Source: domain.SourceTranscript},
	}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	err := chunks.ReplaceForLesson(ctx, tx, lessonID, domain.SourceHTML, []*domain.Chunk{
		{LessonID: lessonID, Content: "fresh html chunk", Embedding: vec(0.5), Source: domain.SourceHTML},
	})
	if err != nil {
		t.Fatalf("ReplaceForLesson: %v", err)
	}

	// The html chunk was swapped; the transcript chunk survived.
	count, err := chunks.CountForLesson(ctx, tx, lessonID)
	if err != nil {
		t.Fatalf("CountForLesson: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	var contents []string
	if err := tx.WithContext(ctx).
		Model(&domain.Chunk{}).
		Where("lesson_id = ?", lessonID).
		Order("id").
		Pluck("content", &contents).Error; err != nil {
		t.Fatalf("pluck contents: %v", err)
	}
	for _, c := range contents {
		if c == "stale html chunk" {
			t.Fatal("stale html chunk survived replacement")
		}
	}
}
