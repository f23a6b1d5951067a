package models

import (
	"time"
)

// GenerationParams is built from the generator form at submission time and
// never mutated afterwards.
type GenerationParams struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt"`
	AspectRatio    string  `json:"aspectRatio"`
	Resolution     string  `json:"resolution"`
	Model          string  `json:"model"`
	Steps          int     `json:"steps"`
	Guidance       float64 `json:"guidance"`
	Seed           *int64  `json:"seed"`
}

// DefaultGenerationParams mirrors the initial state of the generator form.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		AspectRatio: "1:1",
		Resolution:  "1024",
		Steps:       30,
		Guidance:    7.5,
	}
}

// GeneratedImage is created once per successful generation.
type GeneratedImage struct {
	URL            string           `json:"url"`
	Prompt         string           `json:"prompt"`
	NegativePrompt string           `json:"negativePrompt,omitempty"`
	Timestamp      int64            `json:"timestamp"` // epoch milliseconds
	Params         GenerationParams `json:"params"`
}

// StoredImage is a GeneratedImage persisted in the gallery. Only Favorite
// changes after creation.
type StoredImage struct {
	ID             string           `gorm:"primaryKey;size:64" json:"id"`
	URL            string           `gorm:"type:longtext" json:"url"`
	Prompt         string           `gorm:"type:text" json:"prompt"`
	NegativePrompt string           `gorm:"type:text" json:"negativePrompt,omitempty"`
	Timestamp      int64            `gorm:"index" json:"timestamp"`
	Params         GenerationParams `gorm:"serializer:json;type:text" json:"params"`
	Favorite       bool             `gorm:"default:false" json:"favorite"`
	CreatedAt      time.Time        `json:"-"`
}

func (StoredImage) TableName() string {
	return "generated_images"
}

// Image drops the storage-only fields.
func (s *StoredImage) Image() GeneratedImage {
	return GeneratedImage{
		URL:            s.URL,
		Prompt:         s.Prompt,
		NegativePrompt: s.NegativePrompt,
		Timestamp:      s.Timestamp,
		Params:         s.Params,
	}
}
