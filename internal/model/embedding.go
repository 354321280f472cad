package model

import (
	"encoding/json"
	"time"
)

// Embedding stores the semantic vector for one question's embedding-source
// text. Vector is stored as a JSON array of float32 for portability; all rows
// must share one dimensionality for similarity search to be meaningful.
type Embedding struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID string    `gorm:"type:char(36);not null;index" json:"question_id"`
	ChunkText  string    `gorm:"type:text;not null" json:"chunk_text"`
	Vector     string    `gorm:"type:text;not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// VectorValues returns the parsed vector; empty on parse error.
func (e *Embedding) VectorValues() []float32 {
	if e.Vector == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(e.Vector), &v)
	return v
}

// SetVector stores the vector as JSON.
func (e *Embedding) SetVector(vec []float32) {
	if len(vec) == 0 {
		e.Vector = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	e.Vector = string(b)
}
