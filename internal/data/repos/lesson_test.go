package repos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseagent/backend/internal/data/repos"
	"github.com/courseagent/backend/internal/data/repos/testutil"
	"github.com/courseagent/backend/internal/domain"
)

func TestLessonCreateRequiresCourse(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	lessons := repos.NewLessonRepo(db, log)

	_, err := lessons.Create(ctx, tx, &domain.Lesson{
		CourseID: uuid.New(),
		Title:    "Orphan Lesson",
	})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
	if !repos.IsForeignKeyViolation(err) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestLessonTitlesForLesson(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courses := repos.NewCourseRepo(db, log)
	lessons := repos.NewLessonRepo(db, log)

	course, err := courses.UpsertByTitle(ctx, tx, "Cell Biology", "https://example.edu")
	if err != nil {
		t.Fatalf("upsert course: %v", err)
	}
	lesson, err := lessons.Create(ctx, tx, &domain.Lesson{
		CourseID: course.ID,
		Title:    "Organelles",
	})
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	titles, err := lessons.TitlesForLesson(ctx, tx, lesson.ID)
	if err != nil {
		t.Fatalf("TitlesForLesson: %v", err)
	}
	if titles.CourseTitle != "Cell Biology" || titles.LessonTitle != "Organelles" {
		t.Fatalf("titles = %+v", titles)
	}

	_, err = lessons.TitlesForLesson(ctx, tx, uuid.New())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestLessonAttachTranscript(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courses := repos.NewCourseRepo(db, log)
	lessons := repos.NewLessonRepo(db, log)

	course, err := courses.UpsertByTitle(ctx, tx, "Genetics", "https://example.edu")
	if err != nil {
		t.Fatalf("upsert course: %v", err)
	}
	lesson, err := lessons.Create(ctx, tx, &domain.Lesson{
		CourseID: course.ID,
		Title:    "DNA Replication",
		VideoURL: "https://example.edu/videos/dna.mp4",
	})
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	key := "transcripts/" + lesson.ID.String() + ".txt"
	if err := lessons.AttachTranscript(ctx, tx, lesson.ID, key); err != nil {
		t.Fatalf("AttachTranscript: %v", err)
	}

	got, err := lessons.GetByID(ctx, tx, lesson.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TranscriptKey != key {
		t.Fatalf("transcript_key = %q, want %q", got.TranscriptKey, key)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("updated_at not advanced: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}
