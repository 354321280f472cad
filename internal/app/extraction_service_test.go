package app

import (
	"context"
	"errors"
	"testing"

	"examforge/internal/model"
)

type fakeGenClient struct {
	structured    string
	structuredErr error

	embedCalls  int
	failEmbedAt int // 1-based call number that fails; 0 = never
	vector      []float32
}

func (f *fakeGenClient) GenerateStructured(_ context.Context, _ string) (string, error) {
	if f.structuredErr != nil {
		return "", f.structuredErr
	}
	return f.structured, nil
}

func (f *fakeGenClient) Embed(_ context.Context, _ string) ([]float32, error) {
	f.embedCalls++
	if f.failEmbedAt > 0 && f.embedCalls >= f.failEmbedAt {
		return nil, errors.New("embedding backend down")
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return []float32{0.1, 0.2}, nil
}

type fakeMaterialStore struct {
	processed []string
	markErr   error
}

func (f *fakeMaterialStore) MarkProcessed(id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.processed = append(f.processed, id)
	return nil
}

type fakeQuestionStore struct {
	questions []model.Question
	createErr error
}

func (f *fakeQuestionStore) Create(q *model.Question) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.questions = append(f.questions, *q)
	return nil
}

type fakeEmbeddingStore struct {
	embeddings []model.Embedding
	createErr  error
}

func (f *fakeEmbeddingStore) Create(e *model.Embedding) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.embeddings = append(f.embeddings, *e)
	return nil
}

const twoQuestionResponse = `{
	"questions": [
		{"topic": "reading", "difficulty": "easy", "content": {"question": "What color is the sky?"}, "text_for_embedding": "What color is the sky?"},
		{"topic": "error_identification", "difficulty": "hard", "content": {"question": "Find the error."}, "text_for_embedding": "Find the error in the sentence."}
	]
}`

func newTestService(client *fakeGenClient) (*ExtractionService, *fakeMaterialStore, *fakeQuestionStore, *fakeEmbeddingStore) {
	materials := &fakeMaterialStore{}
	questions := &fakeQuestionStore{}
	embeddings := &fakeEmbeddingStore{}
	return NewExtractionService(client, materials, questions, embeddings), materials, questions, embeddings
}

func TestProcessMaterial_PersistsQuestionsEmbeddingsAndMarksProcessed(t *testing.T) {
	client := &fakeGenClient{structured: twoQuestionResponse}
	svc, materials, questions, embeddings := newTestService(client)

	if err := svc.ProcessMaterial(context.Background(), "mat-1", "The sky is blue."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(questions.questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions.questions))
	}
	if len(embeddings.embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(embeddings.embeddings))
	}
	if questions.questions[0].Topic != "reading" || questions.questions[1].Topic != "error_identification" {
		t.Errorf("questions persisted out of order: %q, %q",
			questions.questions[0].Topic, questions.questions[1].Topic)
	}
	for i, q := range questions.questions {
		if q.RawMaterialID != "mat-1" {
			t.Errorf("question %d not linked to material: %q", i, q.RawMaterialID)
		}
		if q.ID == "" {
			t.Errorf("question %d has no id", i)
		}
		if embeddings.embeddings[i].QuestionID != q.ID {
			t.Errorf("embedding %d not linked to its question", i)
		}
	}
	if len(materials.processed) != 1 || materials.processed[0] != "mat-1" {
		t.Errorf("expected material marked processed exactly once, got %v", materials.processed)
	}
}

func TestProcessMaterial_StripsCodeFences(t *testing.T) {
	client := &fakeGenClient{structured: "```json\n" + twoQuestionResponse + "\n```"}
	svc, materials, questions, _ := newTestService(client)

	if err := svc.ProcessMaterial(context.Background(), "mat-1", "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions.questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(questions.questions))
	}
	if len(materials.processed) != 1 {
		t.Errorf("expected material processed")
	}
}

func TestProcessMaterial_EmptyExtractionIsSuccess(t *testing.T) {
	client := &fakeGenClient{structured: `{"questions": []}`}
	svc, materials, questions, embeddings := newTestService(client)

	if err := svc.ProcessMaterial(context.Background(), "mat-1", "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions.questions) != 0 || len(embeddings.embeddings) != 0 {
		t.Errorf("expected no rows for empty extraction")
	}
	if len(materials.processed) != 1 {
		t.Errorf("empty-but-well-formed extraction must still mark processed")
	}
}

func TestProcessMaterial_MalformedResponse(t *testing.T) {
	client := &fakeGenClient{structured: "this is not json"}
	svc, materials, questions, _ := newTestService(client)

	err := svc.ProcessMaterial(context.Background(), "mat-1", "text")
	if !errors.Is(err, ErrMalformedExtraction) {
		t.Fatalf("expected ErrMalformedExtraction, got %v", err)
	}
	if len(questions.questions) != 0 {
		t.Errorf("expected no questions persisted, got %d", len(questions.questions))
	}
	if len(materials.processed) != 0 {
		t.Errorf("material must stay unprocessed")
	}
}

func TestProcessMaterial_GenerationFailureAborts(t *testing.T) {
	client := &fakeGenClient{structuredErr: errors.New("upstream 500")}
	svc, materials, _, _ := newTestService(client)

	err := svc.ProcessMaterial(context.Background(), "mat-1", "text")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if len(materials.processed) != 0 {
		t.Errorf("material must stay unprocessed")
	}
}

func TestProcessMaterial_EmbeddingFailureMidBatch(t *testing.T) {
	// Second embed call fails: the first question keeps its embedding, the
	// second exists without one, and the material stays unprocessed.
	client := &fakeGenClient{structured: twoQuestionResponse, failEmbedAt: 2}
	svc, materials, questions, embeddings := newTestService(client)

	err := svc.ProcessMaterial(context.Background(), "mat-1", "text")
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
	if len(questions.questions) != 2 {
		t.Errorf("expected 2 questions (failing one included), got %d", len(questions.questions))
	}
	if len(embeddings.embeddings) != 1 {
		t.Errorf("expected exactly 1 embedding, got %d", len(embeddings.embeddings))
	}
	if len(materials.processed) != 0 {
		t.Errorf("material must stay unprocessed after partial failure")
	}
}

func TestProcessMaterial_MarkProcessedFailure(t *testing.T) {
	client := &fakeGenClient{structured: twoQuestionResponse}
	svc, materials, questions, embeddings := newTestService(client)
	materials.markErr = errors.New("db gone")

	err := svc.ProcessMaterial(context.Background(), "mat-1", "text")
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
	// Rows written before the final write stay valid.
	if len(questions.questions) != 2 || len(embeddings.embeddings) != 2 {
		t.Errorf("expected committed rows to remain")
	}
}

func TestProcessMaterial_NormalizesTopicAndDifficulty(t *testing.T) {
	client := &fakeGenClient{structured: `{
		"questions": [
			{"topic": "", "difficulty": "extreme", "content": {}, "text_for_embedding": "t"}
		]
	}`}
	svc, _, questions, _ := newTestService(client)

	if err := svc.ProcessMaterial(context.Background(), "mat-1", "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := questions.questions[0]
	if q.Topic != "general" {
		t.Errorf("expected empty topic to default to general, got %q", q.Topic)
	}
	if q.Difficulty != model.DifficultyMedium {
		t.Errorf("expected unknown difficulty normalized to medium, got %q", q.Difficulty)
	}
}
