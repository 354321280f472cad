package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"examforge/internal/model"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	if err := r.db.Create(question).Error; err != nil {
		return fmt.Errorf("create question failed: %w", err)
	}
	return nil
}

func (r *QuestionRepository) ListByMaterialID(materialID string) ([]model.Question, error) {
	var list []model.Question
	if err := r.db.Where("raw_material_id = ?", materialID).
		Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list questions by material failed: %w", err)
	}
	return list, nil
}

func (r *QuestionRepository) GetByID(id string) (*model.Question, error) {
	var question model.Question
	if err := r.db.Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query question failed: %w", err)
	}
	return &question, nil
}
