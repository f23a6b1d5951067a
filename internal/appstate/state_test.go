package appstate

import (
	"context"
	"testing"

	"NanoVision/server/internal/config"
	"NanoVision/server/internal/models"
	"NanoVision/server/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewRedisStoreFromClient(client)
}

func TestState_Defaults(t *testing.T) {
	s := New(newStore(t), nil, nil)
	require.NoError(t, s.Load(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, models.ThemeLight, snap.Theme)
	assert.Equal(t, models.APIFormatChat, snap.API.APIFormat)
	assert.Equal(t, models.DefaultThemeSettings(), snap.ThemeSettings)
	assert.Equal(t, "16px", s.GlassBlur())
	assert.InDelta(t, 0.8, s.BackgroundOpacity(), 1e-9)
}

func TestState_SeedFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Upstream.DefaultEndpoint = "https://api.example.com"
	cfg.Upstream.DefaultAPIKey = "sk-test"
	cfg.Upstream.DefaultModel = "banana"
	cfg.Upstream.DefaultFormat = "images"

	s := New(newStore(t), cfg, nil)
	require.NoError(t, s.Load(context.Background()))

	api := s.APIConfig()
	assert.True(t, api.Complete())
	assert.Equal(t, "banana", api.Model)
	assert.Equal(t, models.APIFormatImages, api.APIFormat)
}

func TestState_LoadPersisted(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.PutSetting(ctx, KeyAPIConfig, `{"endpoint":"https://e","apiKey":"k","model":"m"}`))
	require.NoError(t, store.PutSetting(ctx, KeyAssistantConfig, `not json`))
	require.NoError(t, store.PutSetting(ctx, KeyTheme, "dark"))
	require.NoError(t, store.PutSetting(ctx, KeyThemeSettings, `{"transparency":40}`))

	s := New(store, nil, nil)
	require.NoError(t, s.Load(ctx))

	snap := s.Snapshot()
	assert.Equal(t, "https://e", snap.API.Endpoint)
	assert.Equal(t, models.APIFormatChat, snap.API.APIFormat)
	assert.Equal(t, models.AssistantConfig{}, snap.Assistant)
	assert.Equal(t, models.ThemeDark, snap.Theme)
	assert.True(t, snap.ThemeSettings.GlassEffect)
	assert.Equal(t, 40, snap.ThemeSettings.Transparency)
}

func TestState_SavePersists(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	s := New(store, nil, nil)

	require.NoError(t, s.SaveAPIConfig(ctx, models.APIConfig{Endpoint: "https://e", APIKey: "k", APIFormat: "bogus"}))
	require.NoError(t, s.SaveAssistantConfig(ctx, models.AssistantConfig{Endpoint: "https://a", APIKey: "k2", Model: "gpt"}))

	theme, err := s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, theme)
	assert.Error(t, s.SetTheme(ctx, "sepia"))

	off := false
	over := 250
	settings, err := s.UpdateThemeSettings(ctx, models.ThemeSettingsPatch{GlassEffect: &off, Transparency: &over})
	require.NoError(t, err)
	assert.Equal(t, models.ThemeSettings{GlassEffect: false, Transparency: 100}, settings)
	assert.Equal(t, "0px", s.GlassBlur())

	reloaded := New(store, nil, nil)
	require.NoError(t, reloaded.Load(ctx))
	snap := reloaded.Snapshot()
	assert.Equal(t, models.APIFormatChat, snap.API.APIFormat)
	assert.Equal(t, "gpt", snap.Assistant.Model)
	assert.Equal(t, models.ThemeDark, snap.Theme)
	assert.Equal(t, settings, snap.ThemeSettings)
}

func TestState_PartialPatch(t *testing.T) {
	ctx := context.Background()
	s := New(newStore(t), nil, nil)

	v := 10
	settings, err := s.UpdateThemeSettings(ctx, models.ThemeSettingsPatch{Transparency: &v})
	require.NoError(t, err)
	assert.True(t, settings.GlassEffect)
	assert.Equal(t, 10, settings.Transparency)
}
