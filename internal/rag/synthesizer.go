package rag

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/courseagent/backend/internal/platform/apierr"
	"github.com/courseagent/backend/internal/platform/logger"
)

// systemPrompt instructs the generation service to stay concise and to
// emit inline "[chunk N]" markers. The marker format is a wire
// contract: downstream consumers parse it out of the answer text.
const systemPrompt = "You are a concise assistant. Cite chunks like [chunk N] in-line."

// blockSeparator delimits context blocks inside the user prompt.
const blockSeparator = "\n---\n"

// Generator is the external answer-generation collaborator.
type Generator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

// Answer is the final synthesis result. Citations are exactly the
// assembler's list in its original order; the synthesizer never
// reorders or filters them based on which markers the generated text
// happens to reference.
type Answer struct {
	Text      string   `json:"answer"`
	Citations []string `json:"citations"`
}

type Synthesizer struct {
	generator Generator
	log       *logger.Logger
}

func NewSynthesizer(generator Generator, baseLog *logger.Logger) *Synthesizer {
	return &Synthesizer{
		generator: generator,
		log:       baseLog.With("service", "Synthesizer"),
	}
}

// BuildUserPrompt renders the question plus the ordered evidence
// blocks into the user message.
func BuildUserPrompt(query string, blocks []string) string {
	return fmt.Sprintf("Q: %s\n\nContext:\n%s", query, strings.Join(blocks, blockSeparator))
}

func (s *Synthesizer) Synthesize(ctx context.Context, query string, evidence *Context) (*Answer, error) {
	text, err := s.generator.GenerateText(ctx, systemPrompt, BuildUserPrompt(query, evidence.Blocks))
	if err != nil {
		if apierr.Code(err) != "" {
			return nil, err
		}
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeGenerationFailed, fmt.Errorf("generate answer: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeGenerationFailed, fmt.Errorf("generation service returned empty answer"))
	}
	return &Answer{Text: text, Citations: evidence.Citations}, nil
}
