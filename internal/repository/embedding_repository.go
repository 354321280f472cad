package repository

import (
	"fmt"

	"gorm.io/gorm"

	"examforge/internal/model"
)

type EmbeddingRepository struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

func (r *EmbeddingRepository) Create(embedding *model.Embedding) error {
	if err := r.db.Create(embedding).Error; err != nil {
		return fmt.Errorf("create embedding failed: %w", err)
	}
	return nil
}

// ListAll returns every embedding row. The similarity scan ranks them in
// memory; fine at this scale, a nearest-neighbor index takes over later.
func (r *EmbeddingRepository) ListAll() ([]model.Embedding, error) {
	var list []model.Embedding
	if err := r.db.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list embeddings failed: %w", err)
	}
	return list, nil
}

func (r *EmbeddingRepository) ListByQuestionID(questionID string) ([]model.Embedding, error) {
	var list []model.Embedding
	if err := r.db.Where("question_id = ?", questionID).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list embeddings by question failed: %w", err)
	}
	return list, nil
}
