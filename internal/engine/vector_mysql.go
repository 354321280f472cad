package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"examforge/internal/model"
)

type embeddingSource interface {
	ListAll() ([]model.Embedding, error)
}

type questionSource interface {
	GetByID(id string) (*model.Question, error)
}

// MySQLVectorAccessor ranks stored embeddings by cosine similarity against a
// query vector. The scan runs in memory over the embedding rows; callers never
// see where the vectors live.
type MySQLVectorAccessor struct {
	embeddings embeddingSource
	questions  questionSource
}

func NewMySQLVectorAccessor(embeddings embeddingSource, questions questionSource) *MySQLVectorAccessor {
	return &MySQLVectorAccessor{embeddings: embeddings, questions: questions}
}

func (a *MySQLVectorAccessor) FindSimilarQuestions(ctx context.Context, vector []float32, limit int) ([]SimilarQuestion, error) {
	if len(vector) == 0 || limit <= 0 {
		return []SimilarQuestion{}, nil
	}

	rows, err := a.embeddings.ListAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccessor, err)
	}
	if len(rows) == 0 {
		return []SimilarQuestion{}, nil
	}

	type scoredRow struct {
		questionID string
		chunkText  string
		score      float32
	}
	scored := make([]scoredRow, 0, len(rows))
	for i := range rows {
		score := cosineSimilarity(vector, rows[i].VectorValues())
		scored = append(scored, scoredRow{
			questionID: rows[i].QuestionID,
			chunkText:  rows[i].ChunkText,
			score:      score,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if limit > len(scored) {
		limit = len(scored)
	}

	results := make([]SimilarQuestion, 0, limit)
	for _, row := range scored[:limit] {
		question, err := a.questions.GetByID(row.questionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAccessor, err)
		}
		if question == nil {
			continue
		}
		results = append(results, SimilarQuestion{
			QuestionID: question.ID,
			Topic:      question.Topic,
			Difficulty: question.Difficulty,
			Content:    json.RawMessage(question.Content),
			Score:      row.score,
		})
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
