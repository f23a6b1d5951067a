package models

import (
	"time"
)

// APIFormat selects the request shape sent to the image backend.
type APIFormat string

const (
	APIFormatChat   APIFormat = "chat"
	APIFormatImages APIFormat = "images"
)

// APIConfig is the user-configured image backend.
type APIConfig struct {
	Endpoint  string    `json:"endpoint"`
	APIKey    string    `json:"apiKey"`
	Model     string    `json:"model"`
	APIFormat APIFormat `json:"apiFormat"`
}

// Complete reports whether endpoint and key are both set.
func (c APIConfig) Complete() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

// AssistantConfig is the chat backend used by the prompt optimizer.
type AssistantConfig struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
}

func (c AssistantConfig) Complete() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeSettings are the glass-panel presentation knobs.
type ThemeSettings struct {
	GlassEffect  bool `json:"glassEffect"`
	Transparency int  `json:"transparency"` // 0-100
}

func DefaultThemeSettings() ThemeSettings {
	return ThemeSettings{GlassEffect: true, Transparency: 80}
}

// ThemeSettingsPatch is a partial update; nil fields are left alone.
type ThemeSettingsPatch struct {
	GlassEffect  *bool `json:"glassEffect,omitempty"`
	Transparency *int  `json:"transparency,omitempty"`
}

// Setting is one row of the key/value settings table.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
