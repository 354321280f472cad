package engine

import (
	"context"
	"encoding/json"
	"errors"
)

// Sentinel causes for engine failures. Implementations wrap these with %w so
// the composition workflow can classify a failure without knowing which
// concrete engine produced it.
var (
	ErrGeneration      = errors.New("exam generation failed")
	ErrPersonalization = errors.New("personalization failed")
	ErrAccessor        = errors.New("vector accessor failed")
)

// SimilarQuestion is the payload returned by a VectorAccessor: enough of a
// prior question to use as generation context, plus its similarity score.
type SimilarQuestion struct {
	QuestionID string          `json:"question_id"`
	Topic      string          `json:"topic"`
	Difficulty string          `json:"difficulty"`
	Content    json.RawMessage `json:"content"`
	Score      float32         `json:"score"`
}

// ExamGenerationEngine produces a new exam item for a topic and difficulty.
// How exams are generated is volatile (prompt tuning, model swaps), so it
// hides behind this contract.
type ExamGenerationEngine interface {
	GenerateExam(ctx context.Context, topic, difficulty string) (json.RawMessage, error)
}

// PersonalizationEngine determines a user's weak topics, strongest signal
// first. An empty result means "no signal yet" and is not an error.
type PersonalizationEngine interface {
	DetermineWeakPoints(ctx context.Context, userID uint) ([]string, error)
}

// VectorAccessor finds semantically similar prior questions. An empty or
// unpopulated index yields an empty slice, never an error.
type VectorAccessor interface {
	FindSimilarQuestions(ctx context.Context, vector []float32, limit int) ([]SimilarQuestion, error)
}
