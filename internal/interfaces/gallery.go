package interfaces

import (
	"context"

	"NanoVision/server/internal/models"
)

// GalleryStore persists generated images keyed by a generated identifier
type GalleryStore interface {
	// Save assigns a new identifier and stores the image
	Save(ctx context.Context, img *models.GeneratedImage) (*models.StoredImage, error)

	// Get returns a stored image by identifier
	Get(ctx context.Context, id string) (*models.StoredImage, error)

	// List returns all stored images, newest first
	List(ctx context.Context) ([]models.StoredImage, error)

	// ToggleFavorite flips the favorite flag and returns the updated image
	ToggleFavorite(ctx context.Context, id string) (*models.StoredImage, error)

	// Delete removes one image
	Delete(ctx context.Context, id string) error

	// Clear removes every image
	Clear(ctx context.Context) error
}

// SettingsStore is a flat key/value store for client preferences.
// Writes are last-write-wins.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// GenerationLog keeps a short diagnostic trail of finished generations
type GenerationLog interface {
	RecordGeneration(ctx context.Context, entry GenerationRecord) error
	RecentGenerations(ctx context.Context, limit int64) ([]GenerationRecord, error)
}

// GenerationRecord is one entry of the generation log
type GenerationRecord struct {
	Model      string `json:"model"`
	Format     string `json:"format"`
	Size       string `json:"size"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Timestamp  int64  `json:"timestamp"`
}
