package storage

import (
	"context"
	"errors"
	"fmt"

	"NanoVision/server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository implements interfaces.SettingsStore on SQL
type SettingsRepository struct {
	db *gorm.DB
}

func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var row models.Setting
	err := r.db.WithContext(ctx).First(&row, "`key` = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (r *SettingsRepository) PutSetting(ctx context.Context, key, value string) error {
	row := models.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

func (r *SettingsRepository) DeleteSetting(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Setting{}, "`key` = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
