package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/courseagent/backend/internal/platform/apierr"
)

type fakeGenerator struct {
	text string
	err  error

	gotSystem string
	gotUser   string
}

func (f *fakeGenerator) GenerateText(_ context.Context, system string, user string) (string, error) {
	f.gotSystem = system
	f.gotUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func TestSynthesizePromptContract(t *testing.T) {
	gen := &fakeGenerator{text: "Plants use sunlight [chunk 5]."}
	s := NewSynthesizer(gen, testLogger(t))

	evidence := &Context{
		Blocks:    []string{"Photosynthesis uses sunlight...", "Chlorophyll absorbs..."},
		Citations: []string{"Bio ▸ L1 [chunk 5]", "Bio ▸ L1 [chunk 6]"},
	}
	ans, err := s.Synthesize(context.Background(), "How do plants make energy?", evidence)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if gen.gotSystem != "You are a concise assistant. Cite chunks like [chunk N] in-line." {
		t.Fatalf("system prompt = %q", gen.gotSystem)
	}
	wantUser := "Q: How do plants make energy?\n\nContext:\nPhotosynthesis uses sunlight...\n---\nChlorophyll absorbs..."
	if gen.gotUser != wantUser {
		t.Fatalf("user prompt = %q, want %q", gen.gotUser, wantUser)
	}
	if ans.Text != "Plants use sunlight [chunk 5]." {
		t.Fatalf("answer = %q", ans.Text)
	}
}

func TestSynthesizeReturnsCitationsUnmodified(t *testing.T) {
	gen := &fakeGenerator{text: "Only cites the first [chunk 1]."}
	s := NewSynthesizer(gen, testLogger(t))

	citations := []string{"A ▸ B [chunk 1]", "A ▸ C [chunk 2]", "A ▸ D [chunk 3]"}
	ans, err := s.Synthesize(context.Background(), "q", &Context{
		Blocks:    []string{"one", "two", "three"},
		Citations: citations,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(ans.Citations) != len(citations) {
		t.Fatalf("citations filtered: %v", ans.Citations)
	}
	for i := range citations {
		if ans.Citations[i] != citations[i] {
			t.Fatalf("citation %d reordered: %q", i, ans.Citations[i])
		}
	}
}

func TestSynthesizeGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	s := NewSynthesizer(gen, testLogger(t))

	_, err := s.Synthesize(context.Background(), "q", &Context{Blocks: []string{"b"}})
	if !apierr.Is(err, apierr.CodeGenerationFailed) {
		t.Fatalf("expected generation_failed, got %v", err)
	}
}

func TestSynthesizeRejectsEmptyGeneration(t *testing.T) {
	gen := &fakeGenerator{text: "   "}
	s := NewSynthesizer(gen, testLogger(t))

	_, err := s.Synthesize(context.Background(), "q", &Context{Blocks: []string{"b"}})
	if !apierr.Is(err, apierr.CodeGenerationFailed) {
		t.Fatalf("expected generation_failed for empty answer, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "empty answer") {
		t.Fatalf("unexpected message: %v", err)
	}
}
