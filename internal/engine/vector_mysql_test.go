package engine

import (
	"context"
	"errors"
	"testing"

	"examforge/internal/model"
)

type fakeEmbeddingSource struct {
	rows []model.Embedding
	err  error
}

func (f *fakeEmbeddingSource) ListAll() ([]model.Embedding, error) {
	return f.rows, f.err
}

type fakeQuestionSource struct {
	questions map[string]*model.Question
}

func (f *fakeQuestionSource) GetByID(id string) (*model.Question, error) {
	return f.questions[id], nil
}

func embeddingRow(questionID string, vec []float32) model.Embedding {
	e := model.Embedding{QuestionID: questionID, ChunkText: "chunk"}
	e.SetVector(vec)
	return e
}

func TestFindSimilarQuestions_EmptyIndex(t *testing.T) {
	accessor := NewMySQLVectorAccessor(&fakeEmbeddingSource{}, &fakeQuestionSource{})

	got, err := accessor.FindSimilarQuestions(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("empty index must not be an error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestFindSimilarQuestions_RanksByCosine(t *testing.T) {
	embeddings := &fakeEmbeddingSource{rows: []model.Embedding{
		embeddingRow("q-far", []float32{0, 1}),
		embeddingRow("q-near", []float32{1, 0.1}),
		embeddingRow("q-mid", []float32{1, 1}),
	}}
	questions := &fakeQuestionSource{questions: map[string]*model.Question{
		"q-near": {ID: "q-near", Topic: "reading", Difficulty: "easy", Content: `{"q":1}`},
		"q-mid":  {ID: "q-mid", Topic: "listening", Difficulty: "medium", Content: `{"q":2}`},
		"q-far":  {ID: "q-far", Topic: "writing", Difficulty: "hard", Content: `{"q":3}`},
	}}
	accessor := NewMySQLVectorAccessor(embeddings, questions)

	got, err := accessor.FindSimilarQuestions(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].QuestionID != "q-near" || got[1].QuestionID != "q-mid" {
		t.Errorf("unexpected ranking: %s, %s", got[0].QuestionID, got[1].QuestionID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores must be descending: %f, %f", got[0].Score, got[1].Score)
	}
	if got[0].Topic != "reading" {
		t.Errorf("expected question payload attached, got topic %q", got[0].Topic)
	}
}

func TestFindSimilarQuestions_SkipsMissingQuestions(t *testing.T) {
	embeddings := &fakeEmbeddingSource{rows: []model.Embedding{
		embeddingRow("q-gone", []float32{1, 0}),
	}}
	accessor := NewMySQLVectorAccessor(embeddings, &fakeQuestionSource{questions: map[string]*model.Question{}})

	got, err := accessor.FindSimilarQuestions(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected orphan embedding skipped, got %d results", len(got))
	}
}

func TestFindSimilarQuestions_StoreError(t *testing.T) {
	accessor := NewMySQLVectorAccessor(&fakeEmbeddingSource{err: errors.New("db gone")}, &fakeQuestionSource{})

	_, err := accessor.FindSimilarQuestions(context.Background(), []float32{1, 0}, 3)
	if !errors.Is(err, ErrAccessor) {
		t.Fatalf("expected ErrAccessor, got %v", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: expected 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 2}, []float32{1, 2}); got < 0.999 {
		t.Errorf("identical vectors: expected ~1, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Errorf("dimension mismatch: expected 0, got %f", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors: expected 0, got %f", got)
	}
}
