package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"examforge/internal/model"
)

type RawMaterialRepository struct {
	db *gorm.DB
}

func NewRawMaterialRepository(db *gorm.DB) *RawMaterialRepository {
	return &RawMaterialRepository{db: db}
}

func (r *RawMaterialRepository) Create(material *model.RawMaterial) error {
	if err := r.db.Create(material).Error; err != nil {
		return fmt.Errorf("create raw material failed: %w", err)
	}
	return nil
}

func (r *RawMaterialRepository) GetByID(id string) (*model.RawMaterial, error) {
	var material model.RawMaterial
	if err := r.db.Where("id = ?", id).First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query raw material failed: %w", err)
	}
	return &material, nil
}

// ListUnprocessed returns materials whose extraction has not committed yet,
// oldest first. Used by operator-triggered re-runs.
func (r *RawMaterialRepository) ListUnprocessed(limit int) ([]model.RawMaterial, error) {
	q := r.db.Where("processed = ?", false).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []model.RawMaterial
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list unprocessed materials failed: %w", err)
	}
	return list, nil
}

// MarkProcessed flips the commit marker for one material.
func (r *RawMaterialRepository) MarkProcessed(id string) error {
	if err := r.db.Model(&model.RawMaterial{}).Where("id = ?", id).
		Update("processed", true).Error; err != nil {
		return fmt.Errorf("mark material processed failed: %w", err)
	}
	return nil
}
