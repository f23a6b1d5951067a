// Package appstate holds the user-editable preferences shared by the
// generator, the prompt optimizer and the HTTP handlers.
package appstate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"NanoVision/server/internal/config"
	"NanoVision/server/internal/interfaces"
	"NanoVision/server/internal/models"

	"go.uber.org/zap"
)

// Persisted keys
const (
	KeyAPIConfig       = "nanobanana-api-config"
	KeyAssistantConfig = "nanobanana-ai-config"
	KeyTheme           = "nanobanana-theme"
	KeyThemeSettings   = "nanobanana-theme-settings"
)

// Snapshot is a point-in-time copy of the state
type Snapshot struct {
	API           models.APIConfig       `json:"api"`
	Assistant     models.AssistantConfig `json:"assistant"`
	Theme         models.Theme           `json:"theme"`
	ThemeSettings models.ThemeSettings   `json:"themeSettings"`
}

type State struct {
	mu            sync.RWMutex
	store         interfaces.SettingsStore
	logger        *zap.Logger
	api           models.APIConfig
	assistant     models.AssistantConfig
	theme         models.Theme
	themeSettings models.ThemeSettings
}

// New creates a state seeded from the config file. Call Load to apply
// persisted values.
func New(store interfaces.SettingsStore, cfg *config.Config, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &State{
		store:         store,
		logger:        logger,
		theme:         models.ThemeLight,
		themeSettings: models.DefaultThemeSettings(),
		api:           models.APIConfig{APIFormat: models.APIFormatChat},
	}
	if cfg != nil {
		s.api = models.APIConfig{
			Endpoint:  cfg.Upstream.DefaultEndpoint,
			APIKey:    cfg.Upstream.DefaultAPIKey,
			Model:     cfg.Upstream.DefaultModel,
			APIFormat: normalizeFormat(models.APIFormat(cfg.Upstream.DefaultFormat)),
		}
		if cfg.Defaults.Theme == string(models.ThemeDark) {
			s.theme = models.ThemeDark
		}
	}
	return s
}

// Load applies persisted values. Missing or malformed entries keep the defaults.
func (s *State) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok, err := s.store.GetSetting(ctx, KeyAPIConfig); err != nil {
		return fmt.Errorf("failed to load api config: %w", err)
	} else if ok {
		var cfg models.APIConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			s.logger.Warn("ignoring malformed api config", zap.Error(err))
		} else {
			cfg.APIFormat = normalizeFormat(cfg.APIFormat)
			s.api = cfg
		}
	}

	if raw, ok, err := s.store.GetSetting(ctx, KeyAssistantConfig); err != nil {
		return fmt.Errorf("failed to load assistant config: %w", err)
	} else if ok {
		var cfg models.AssistantConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			s.logger.Warn("ignoring malformed assistant config", zap.Error(err))
		} else {
			s.assistant = cfg
		}
	}

	if raw, ok, err := s.store.GetSetting(ctx, KeyTheme); err != nil {
		return fmt.Errorf("failed to load theme: %w", err)
	} else if ok {
		switch models.Theme(raw) {
		case models.ThemeLight, models.ThemeDark:
			s.theme = models.Theme(raw)
		default:
			s.logger.Warn("ignoring unknown theme", zap.String("theme", raw))
		}
	}

	if raw, ok, err := s.store.GetSetting(ctx, KeyThemeSettings); err != nil {
		return fmt.Errorf("failed to load theme settings: %w", err)
	} else if ok {
		settings := models.DefaultThemeSettings()
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			s.logger.Warn("ignoring malformed theme settings", zap.Error(err))
		} else {
			settings.Transparency = clampPercent(settings.Transparency)
			s.themeSettings = settings
		}
	}

	return nil
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		API:           s.api,
		Assistant:     s.assistant,
		Theme:         s.theme,
		ThemeSettings: s.themeSettings,
	}
}

func (s *State) APIConfig() models.APIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api
}

func (s *State) AssistantConfig() models.AssistantConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assistant
}

// SaveAPIConfig replaces the image backend config and persists it
func (s *State) SaveAPIConfig(ctx context.Context, cfg models.APIConfig) error {
	cfg.APIFormat = normalizeFormat(cfg.APIFormat)
	if err := s.putJSON(ctx, KeyAPIConfig, cfg); err != nil {
		return err
	}
	s.mu.Lock()
	s.api = cfg
	s.mu.Unlock()
	return nil
}

func (s *State) SaveAssistantConfig(ctx context.Context, cfg models.AssistantConfig) error {
	if err := s.putJSON(ctx, KeyAssistantConfig, cfg); err != nil {
		return err
	}
	s.mu.Lock()
	s.assistant = cfg
	s.mu.Unlock()
	return nil
}

func (s *State) SetTheme(ctx context.Context, theme models.Theme) error {
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return fmt.Errorf("unknown theme: %q", theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.PutSetting(ctx, KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	s.theme = theme
	return nil
}

// ToggleTheme flips light/dark and returns the new theme
func (s *State) ToggleTheme(ctx context.Context) (models.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := models.ThemeDark
	if s.theme == models.ThemeDark {
		next = models.ThemeLight
	}
	if err := s.store.PutSetting(ctx, KeyTheme, string(next)); err != nil {
		return s.theme, fmt.Errorf("failed to save theme: %w", err)
	}
	s.theme = next
	return next, nil
}

// UpdateThemeSettings merges the non-nil fields of patch
func (s *State) UpdateThemeSettings(ctx context.Context, patch models.ThemeSettingsPatch) (models.ThemeSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.themeSettings
	if patch.GlassEffect != nil {
		next.GlassEffect = *patch.GlassEffect
	}
	if patch.Transparency != nil {
		next.Transparency = clampPercent(*patch.Transparency)
	}

	data, err := json.Marshal(next)
	if err != nil {
		return s.themeSettings, fmt.Errorf("failed to marshal theme settings: %w", err)
	}
	if err := s.store.PutSetting(ctx, KeyThemeSettings, string(data)); err != nil {
		return s.themeSettings, fmt.Errorf("failed to save theme settings: %w", err)
	}
	s.themeSettings = next
	return next, nil
}

// GlassBlur is the backdrop blur applied to panels
func (s *State) GlassBlur() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.themeSettings.GlassEffect {
		return "16px"
	}
	return "0px"
}

// BackgroundOpacity is transparency expressed as 0..1
func (s *State) BackgroundOpacity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return float64(s.themeSettings.Transparency) / 100
}

func (s *State) putJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.store.PutSetting(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func normalizeFormat(f models.APIFormat) models.APIFormat {
	if f == models.APIFormatImages {
		return models.APIFormatImages
	}
	return models.APIFormatChat
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
