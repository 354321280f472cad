package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"examforge/internal/ai"
)

type structuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string) (string, error)
}

// GeminiExamEngine generates exam items through the generative backend.
type GeminiExamEngine struct {
	client structuredGenerator
}

func NewGeminiExamEngine(client structuredGenerator) *GeminiExamEngine {
	return &GeminiExamEngine{client: client}
}

func (e *GeminiExamEngine) GenerateExam(ctx context.Context, topic, difficulty string) (json.RawMessage, error) {
	prompt := fmt.Sprintf(
		"Generate a %s difficulty exam question for topic: %s. "+
			"Return a JSON object with 'question', 'choices' (if applicable), 'answer' and 'explanation'.",
		difficulty, topic,
	)

	raw, err := e.client.GenerateStructured(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	cleaned := ai.StripCodeFence(raw)
	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("%w: generated content is not valid JSON", ErrGeneration)
	}
	return json.RawMessage(cleaned), nil
}
