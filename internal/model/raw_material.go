package model

import "time"

// RawMaterial is one unit of ingested source text. Processed flips to true
// only after every extracted question and embedding has been written; it is a
// commit marker, not a start marker.
type RawMaterial struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	URL        string    `gorm:"size:1024" json:"url"`
	SourceType string    `gorm:"size:64;not null" json:"source_type"` // e.g. "article", "transcript", "note"
	Content    string    `gorm:"type:longtext;not null" json:"-"`
	Processed  bool      `gorm:"not null;default:false;index" json:"processed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
