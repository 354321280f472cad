package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"examforge/internal/ai"
	"examforge/internal/model"
)

var (
	ErrExtractionFailed    = errors.New("question extraction failed")
	ErrMalformedExtraction = errors.New("extraction response is malformed")
	ErrEmbeddingFailed     = errors.New("embedding generation failed")
	ErrPersistenceFailed   = errors.New("persistence failed")
)

// GenerativeClient is the slice of the generative backend the pipeline needs.
type GenerativeClient interface {
	GenerateStructured(ctx context.Context, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

type MaterialStore interface {
	MarkProcessed(id string) error
}

type QuestionStore interface {
	Create(question *model.Question) error
}

type EmbeddingStore interface {
	Create(embedding *model.Embedding) error
}

// ExtractionService turns one raw material's text into persisted questions
// with embeddings, then marks the material processed.
type ExtractionService struct {
	client     GenerativeClient
	materials  MaterialStore
	questions  QuestionStore
	embeddings EmbeddingStore
}

func NewExtractionService(
	client GenerativeClient,
	materials MaterialStore,
	questions QuestionStore,
	embeddings EmbeddingStore,
) *ExtractionService {
	return &ExtractionService{
		client:     client,
		materials:  materials,
		questions:  questions,
		embeddings: embeddings,
	}
}

type extractedQuestion struct {
	Topic            string          `json:"topic"`
	Difficulty       string          `json:"difficulty"`
	Content          json.RawMessage `json:"content"`
	TextForEmbedding string          `json:"text_for_embedding"`
}

type extractionResponse struct {
	Questions []extractedQuestion `json:"questions"`
}

const extractionPromptFormat = "Analyze the following text and extract practice questions for an " +
	"English proficiency exam. Return a JSON object with a key 'questions', which is a list of " +
	"objects. Each object must have: 'topic' (e.g. reading, listening, error_identification), " +
	"'difficulty' (easy, medium, hard), 'content' (the actual question structure), and " +
	"'text_for_embedding' (a summary or the question text itself).\n\nTEXT: %s"

// ProcessMaterial runs the full extraction for one material. Every error is
// fatal to this run: no retries, no rollback of rows already written, and the
// processed flag is set only after all questions and embeddings committed. A
// failed material stays unprocessed and can be re-run manually; re-running
// always creates fresh rows.
func (s *ExtractionService) ProcessMaterial(ctx context.Context, materialID, rawText string) error {
	log.Printf("processing material %s", materialID)

	raw, err := s.client.GenerateStructured(ctx, fmt.Sprintf(extractionPromptFormat, rawText))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var extracted extractionResponse
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &extracted); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	// Records are persisted in document order; the loop is deliberately
	// sequential so one material produces bounded outbound traffic.
	for i, record := range extracted.Questions {
		question := &model.Question{
			ID:               uuid.NewString(),
			RawMaterialID:    materialID,
			Topic:            record.Topic,
			Difficulty:       record.Difficulty,
			Content:          string(record.Content),
			TextForEmbedding: record.TextForEmbedding,
		}
		if question.Topic == "" {
			question.Topic = "general"
		}
		if !model.ValidDifficulty(question.Difficulty) {
			question.Difficulty = model.DifficultyMedium
		}
		if err := s.questions.Create(question); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrPersistenceFailed, i, err)
		}

		vector, err := s.client.Embed(ctx, record.TextForEmbedding)
		if err != nil {
			// Abort the whole run rather than keeping a question that can
			// never be found by similarity search. Rows written so far stay.
			return fmt.Errorf("%w: question %s: %v", ErrEmbeddingFailed, question.ID, err)
		}

		embedding := &model.Embedding{
			QuestionID: question.ID,
			ChunkText:  record.TextForEmbedding,
		}
		embedding.SetVector(vector)
		if err := s.embeddings.Create(embedding); err != nil {
			return fmt.Errorf("%w: embedding for question %s: %v", ErrPersistenceFailed, question.ID, err)
		}
	}

	if err := s.materials.MarkProcessed(materialID); err != nil {
		return fmt.Errorf("%w: mark processed: %v", ErrPersistenceFailed, err)
	}

	log.Printf("finished processing material %s: %d questions", materialID, len(extracted.Questions))
	return nil
}
