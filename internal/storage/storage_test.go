package storage

import (
	"context"
	"fmt"
	"testing"

	"NanoVision/server/internal/config"
	"NanoVision/server/internal/interfaces"
	"NanoVision/server/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ interfaces.GalleryStore  = (*GalleryRepository)(nil)
	_ interfaces.SettingsStore = (*SettingsRepository)(nil)
	_ interfaces.SettingsStore = (*RedisStore)(nil)
	_ interfaces.GenerationLog = (*RedisStore)(nil)
)

func newTestSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLStore(config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())},
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreFromClient(client)
}

func sampleImage(prompt string, ts int64) *models.GeneratedImage {
	params := models.DefaultGenerationParams()
	params.Prompt = prompt
	return &models.GeneratedImage{
		URL:       "data:image/png;base64,QUJD",
		Prompt:    prompt,
		Timestamp: ts,
		Params:    params,
	}
}

func TestGalleryRepository_SaveGetList(t *testing.T) {
	ctx := context.Background()
	repo := newTestSQLStore(t).Gallery()

	first, err := repo.Save(ctx, sampleImage("a cat", 1000))
	require.NoError(t, err)
	second, err := repo.Save(ctx, sampleImage("a dog", 2000))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, *sampleImage("a cat", 1000), got.Image())
	assert.False(t, got.Favorite)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGalleryRepository_RoundTripKeepsEveryField(t *testing.T) {
	ctx := context.Background()
	repo := newTestSQLStore(t).Gallery()

	seed := int64(-42)
	img := &models.GeneratedImage{
		URL:            "https://cdn.example/a.png",
		Prompt:         "a lighthouse at dusk",
		NegativePrompt: "blurry",
		Timestamp:      1700000000123,
		Params: models.GenerationParams{
			Prompt:         "a lighthouse at dusk",
			NegativePrompt: "blurry",
			AspectRatio:    "21:9",
			Resolution:     "2048",
			Model:          "nano-banana-pro",
			Steps:          80,
			Guidance:       3.25,
			Seed:           &seed,
		},
	}

	saved, err := repo.Save(ctx, img)
	require.NoError(t, err)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, *img, got.Image())
}

func TestGalleryRepository_ToggleDeleteClear(t *testing.T) {
	ctx := context.Background()
	repo := newTestSQLStore(t).Gallery()

	img, err := repo.Save(ctx, sampleImage("a fox", 1))
	require.NoError(t, err)

	toggled, err := repo.ToggleFavorite(ctx, img.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Favorite)

	toggled, err = repo.ToggleFavorite(ctx, img.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Favorite)

	_, err = repo.ToggleFavorite(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, img.ID))
	assert.ErrorIs(t, repo.Delete(ctx, img.ID), ErrNotFound)

	_, err = repo.Save(ctx, sampleImage("one", 1))
	require.NoError(t, err)
	_, err = repo.Save(ctx, sampleImage("two", 2))
	require.NoError(t, err)
	require.NoError(t, repo.Clear(ctx))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSettingsStores(t *testing.T) {
	stores := map[string]interfaces.SettingsStore{
		"sql":   newTestSQLStore(t).Settings(),
		"redis": newTestRedis(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.GetSetting(ctx, "nanobanana-theme")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.PutSetting(ctx, "nanobanana-theme", "light"))
			require.NoError(t, store.PutSetting(ctx, "nanobanana-theme", "dark"))

			val, ok, err := store.GetSetting(ctx, "nanobanana-theme")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "dark", val)

			require.NoError(t, store.DeleteSetting(ctx, "nanobanana-theme"))
			_, ok, err = store.GetSetting(ctx, "nanobanana-theme")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRedisStore_GenerationLog(t *testing.T) {
	ctx := context.Background()
	store := newTestRedis(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordGeneration(ctx, interfaces.GenerationRecord{
			Model:     "m",
			Format:    "chat",
			Size:      "1024x1024",
			Success:   i%2 == 0,
			Timestamp: int64(i),
		}))
	}

	recent, err := store.RecentGenerations(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(4), recent[0].Timestamp)
	assert.Equal(t, int64(2), recent[2].Timestamp)

	all, err := store.RecentGenerations(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestNewSQLStore_UnsupportedDriver(t *testing.T) {
	_, err := NewSQLStore(config.DatabaseConfig{Driver: "postgres"})
	assert.Error(t, err)
}
