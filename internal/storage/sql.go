package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"NanoVision/server/internal/config"
	"NanoVision/server/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a gallery id does not exist
var ErrNotFound = errors.New("record not found")

// SQLStore holds the relational database backing the gallery and settings
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens the database selected by cfg.Driver and migrates the schema
func NewSQLStore(cfg config.DatabaseConfig) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.MySQL.Username,
			cfg.MySQL.Password,
			cfg.MySQL.Host,
			cfg.MySQL.Port,
			cfg.MySQL.Database,
		)
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		if err := ensureParentDir(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == "mysql" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	}

	return newSQLStore(db)
}

// NewSQLStoreFromDB wraps an already opened connection
func NewSQLStoreFromDB(db *gorm.DB) (*SQLStore, error) {
	return newSQLStore(db)
}

func newSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&models.StoredImage{}, &models.Setting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) GetDB() *gorm.DB {
	return s.db
}

// Transaction helper
func (s *SQLStore) WithTx(fn func(*gorm.DB) error) error {
	return s.db.Transaction(fn)
}

// Gallery returns the image repository
func (s *SQLStore) Gallery() *GalleryRepository {
	return &GalleryRepository{store: s}
}

// Settings returns the key/value repository
func (s *SQLStore) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// ensureParentDir creates the directory of an on-disk sqlite file
func ensureParentDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
