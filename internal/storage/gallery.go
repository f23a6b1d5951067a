package storage

import (
	"context"
	"errors"
	"fmt"

	"NanoVision/server/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GalleryRepository implements interfaces.GalleryStore on SQL
type GalleryRepository struct {
	store *SQLStore
}

func (r *GalleryRepository) Save(ctx context.Context, img *models.GeneratedImage) (*models.StoredImage, error) {
	row := &models.StoredImage{
		ID:             uuid.NewString(),
		URL:            img.URL,
		Prompt:         img.Prompt,
		NegativePrompt: img.NegativePrompt,
		Timestamp:      img.Timestamp,
		Params:         img.Params,
	}
	if err := r.store.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	return row, nil
}

func (r *GalleryRepository) Get(ctx context.Context, id string) (*models.StoredImage, error) {
	var row models.StoredImage
	err := r.store.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return &row, nil
}

func (r *GalleryRepository) List(ctx context.Context) ([]models.StoredImage, error) {
	var rows []models.StoredImage
	if err := r.store.db.WithContext(ctx).Order("timestamp DESC").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return rows, nil
}

func (r *GalleryRepository) ToggleFavorite(ctx context.Context, id string) (*models.StoredImage, error) {
	var updated *models.StoredImage
	err := r.store.WithTx(func(tx *gorm.DB) error {
		var row models.StoredImage
		err := tx.WithContext(ctx).First(&row, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		row.Favorite = !row.Favorite
		if err := tx.WithContext(ctx).Model(&row).Update("favorite", row.Favorite).Error; err != nil {
			return err
		}
		updated = &row
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return updated, nil
}

func (r *GalleryRepository) Delete(ctx context.Context, id string) error {
	res := r.store.db.WithContext(ctx).Delete(&models.StoredImage{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GalleryRepository) Clear(ctx context.Context) error {
	err := r.store.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StoredImage{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear gallery: %w", err)
	}
	return nil
}
