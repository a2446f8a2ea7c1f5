package repos_test

import (
	"context"
	"testing"

	"github.com/courseagent/backend/internal/data/repos"
	"github.com/courseagent/backend/internal/data/repos/testutil"
)

func TestCourseUpsertByTitleIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courses := repos.NewCourseRepo(db, log)

	first, err := courses.UpsertByTitle(ctx, tx, "Intro to Biology", "https://example.edu")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := courses.UpsertByTitle(ctx, tx, "Intro to Biology", "https://example.edu/other")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("upsert created a second row: %s vs %s", first.ID, second.ID)
	}
	// The original URL survives; a repeat upsert never overwrites.
	if second.URL != "https://example.edu" {
		t.Fatalf("url = %q, want original", second.URL)
	}

	got, err := courses.GetByID(ctx, tx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Intro to Biology" {
		t.Fatalf("title = %q", got.Title)
	}
}
