package model

import "time"

// Question difficulty levels. Anything else coming back from the extraction
// model is normalized to DifficultyMedium before persistence.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether level is one of the closed difficulty set.
func ValidDifficulty(level string) bool {
	switch level {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is one practice question extracted from a raw material. Content is
// an opaque JSON payload whose shape depends on the topic.
type Question struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	RawMaterialID    string    `gorm:"type:char(36);not null;index" json:"raw_material_id"`
	Topic            string    `gorm:"size:64;not null;index" json:"topic"`
	Difficulty       string    `gorm:"size:16;not null" json:"difficulty"`
	Content          string    `gorm:"type:text;not null" json:"content"` // JSON payload
	TextForEmbedding string    `gorm:"type:text;not null" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}
