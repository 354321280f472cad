package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"examforge/internal/engine"
)

// WorkflowError reports which stage of the exam composition workflow failed.
type WorkflowError struct {
	Stage string
	Err   error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("exam workflow %s stage: %v", e.Stage, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

type weakPointRecorder interface {
	RecordMiss(ctx context.Context, userID uint, topic string) error
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ExamService composes the three engine capabilities into the one user-facing
// operation. It never inspects which concrete engine it holds.
type ExamService struct {
	personalization engine.PersonalizationEngine
	examEngine      engine.ExamGenerationEngine
	accessor        engine.VectorAccessor // optional context enrichment
	embedder        embedder              // optional, only used with accessor
	weakPoints      weakPointRecorder     // optional attempt feedback

	defaultTopic string
	difficulty   string
	similarLimit int
}

type ExamServiceOptions struct {
	DefaultTopic string
	Difficulty   string
	SimilarLimit int
}

func NewExamService(
	personalization engine.PersonalizationEngine,
	examEngine engine.ExamGenerationEngine,
	accessor engine.VectorAccessor,
	emb embedder,
	weakPoints weakPointRecorder,
	opts ExamServiceOptions,
) *ExamService {
	if opts.DefaultTopic == "" {
		opts.DefaultTopic = "general"
	}
	if opts.Difficulty == "" {
		opts.Difficulty = "medium"
	}
	if opts.SimilarLimit <= 0 {
		opts.SimilarLimit = 3
	}
	return &ExamService{
		personalization: personalization,
		examEngine:      examEngine,
		accessor:        accessor,
		embedder:        emb,
		weakPoints:      weakPoints,
		defaultTopic:    opts.DefaultTopic,
		difficulty:      opts.Difficulty,
		similarLimit:    opts.SimilarLimit,
	}
}

// GeneratePersonalizedExam runs a single linear pipeline: weak points, then
// topic selection, then an optional similar-question lookup, then generation.
// The only branching is the default-topic fallback; the similarity step is
// enrichment and never fails the exam.
func (s *ExamService) GeneratePersonalizedExam(ctx context.Context, userID uint) (json.RawMessage, error) {
	weakPoints, err := s.personalization.DetermineWeakPoints(ctx, userID)
	if err != nil {
		return nil, &WorkflowError{Stage: "personalization", Err: err}
	}

	topic := s.defaultTopic
	if len(weakPoints) > 0 {
		topic = weakPoints[0]
	}

	s.logSimilar(ctx, topic)

	exam, err := s.examEngine.GenerateExam(ctx, topic, s.difficulty)
	if err != nil {
		return nil, &WorkflowError{Stage: "generation", Err: err}
	}
	return exam, nil
}

// logSimilar surfaces semantically close prior questions for observability.
// Any failure here is logged and swallowed.
func (s *ExamService) logSimilar(ctx context.Context, topic string) {
	if s.accessor == nil || s.embedder == nil {
		return
	}
	vector, err := s.embedder.Embed(ctx, topic)
	if err != nil {
		log.Printf("embed topic %q for similarity lookup failed: %v", topic, err)
		return
	}
	similar, err := s.accessor.FindSimilarQuestions(ctx, vector, s.similarLimit)
	if err != nil {
		log.Printf("similarity lookup for topic %q failed: %v", topic, err)
		return
	}
	log.Printf("found %d similar prior questions for topic %q", len(similar), topic)
}

// RecordAttempt feeds an answer outcome back into the weak-point counters so
// personalization accumulates signal. Correct answers are a no-op.
func (s *ExamService) RecordAttempt(ctx context.Context, userID uint, topic string, correct bool) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrInvalidInput
	}
	if correct || s.weakPoints == nil {
		return nil
	}
	if err := s.weakPoints.RecordMiss(ctx, userID, topic); err != nil {
		return fmt.Errorf("record attempt failed: %w", err)
	}
	return nil
}
