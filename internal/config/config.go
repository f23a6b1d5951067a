package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Nutrition NutritionConfig `yaml:"nutrition"`
	Gallery   GalleryConfig   `yaml:"gallery"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Driver string       `yaml:"driver"` // "mysql" or "sqlite"
	MySQL  MySQLConfig  `yaml:"mysql"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Redis  RedisConfig  `yaml:"redis"`
}

type MySQLConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// UpstreamConfig controls the proxy towards user-configured image/chat backends.
// DefaultEndpoint/DefaultAPIKey/DefaultModel only seed the API settings when none are saved.
type UpstreamConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	DefaultEndpoint string        `yaml:"default_endpoint"`
	DefaultAPIKey   string        `yaml:"default_api_key"`
	DefaultModel    string        `yaml:"default_model"`
	DefaultFormat   string        `yaml:"default_format"`
}

type NutritionConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type GalleryConfig struct {
	CacheDir        string        `yaml:"cache_dir"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
}

type DefaultsConfig struct {
	Theme       string  `yaml:"theme"`
	AspectRatio string  `yaml:"aspect_ratio"`
	Resolution  string  `yaml:"resolution"`
	Steps       int     `yaml:"steps"`
	Guidance    float64 `yaml:"guidance"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file. A .env file next to the working
// directory is loaded first when present so its values reach the env overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults and environment overrides, then validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied and no file input.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	// Generation requests can take minutes; the write timeout must outlast them.
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Minute
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.SQLite.Path == "" {
		c.Database.SQLite.Path = "data/nanovision.db"
	}
	if c.Database.MySQL.Port == 0 {
		c.Database.MySQL.Port = 3306
	}
	if c.Database.MySQL.MaxOpenConns == 0 {
		c.Database.MySQL.MaxOpenConns = 25
	}
	if c.Database.MySQL.MaxIdleConns == 0 {
		c.Database.MySQL.MaxIdleConns = 25
	}
	if c.Database.MySQL.ConnMaxLifetime == 0 {
		c.Database.MySQL.ConnMaxLifetime = 5 * time.Minute
	}
	if c.Database.Redis.Host == "" {
		c.Database.Redis.Host = "localhost"
	}
	if c.Database.Redis.Port == 0 {
		c.Database.Redis.Port = 6379
	}
	if c.Database.Redis.PoolSize == 0 {
		c.Database.Redis.PoolSize = 10
	}

	if c.Upstream.DefaultFormat == "" {
		c.Upstream.DefaultFormat = "chat"
	}

	if c.Nutrition.BaseURL == "" {
		c.Nutrition.BaseURL = "http://localhost:8000"
	}
	if c.Nutrition.Timeout == 0 {
		c.Nutrition.Timeout = 30 * time.Second
	}

	if c.Gallery.CacheDir == "" {
		c.Gallery.CacheDir = "data/image_cache"
	}
	if c.Gallery.CacheMaxEntries == 0 {
		c.Gallery.CacheMaxEntries = 200
	}
	if c.Gallery.CacheTTL == 0 {
		c.Gallery.CacheTTL = 24 * time.Hour
	}

	if c.Defaults.Theme == "" {
		c.Defaults.Theme = "light"
	}
	if c.Defaults.AspectRatio == "" {
		c.Defaults.AspectRatio = "1:1"
	}
	if c.Defaults.Resolution == "" {
		c.Defaults.Resolution = "1024"
	}
	if c.Defaults.Steps == 0 {
		c.Defaults.Steps = 30
	}
	if c.Defaults.Guidance == 0 {
		c.Defaults.Guidance = 7.5
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NUTRITION_API_BASE_URL"); v != "" {
		c.Nutrition.BaseURL = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.Database.MySQL.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Database.Redis.Password = v
	}
	if v := os.Getenv("UPSTREAM_API_KEY"); v != "" {
		c.Upstream.DefaultAPIKey = v
	}
	if v := os.Getenv("NANOVISION_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("NANOVISION_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NANOVISION_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate checks the fields that have no sensible default.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "mysql":
		if c.Database.MySQL.Host == "" {
			return fmt.Errorf("database.mysql.host is required for the mysql driver")
		}
		if c.Database.MySQL.Database == "" {
			return fmt.Errorf("database.mysql.database is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	switch c.Upstream.DefaultFormat {
	case "chat", "images":
	default:
		return fmt.Errorf("upstream.default_format must be chat or images, got %q", c.Upstream.DefaultFormat)
	}

	switch c.Defaults.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("defaults.theme must be light or dark, got %q", c.Defaults.Theme)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MySQLDSN returns the go-sql-driver DSN for the MySQL section.
func (c *Config) MySQLDSN() string {
	m := c.Database.MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.Username,
		m.Password,
		m.Host,
		m.Port,
		m.Database,
	)
}
