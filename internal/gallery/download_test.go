package gallery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestDecodeDataURI(t *testing.T) {
	data, ct, err := DecodeDataURI("data:image/png;base64,QUJD")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte("ABC"), data)

	data, ct, err = DecodeDataURI("data:image/jpeg;base64,QUJD")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, []byte("ABC"), data)

	data, _, err = DecodeDataURI("data:image/png;base64,QUI")
	require.NoError(t, err)
	assert.Equal(t, []byte("AB"), data)

	data, ct, err = DecodeDataURI("data:,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)
	assert.Equal(t, []byte("hello world"), data)

	_, _, err = DecodeDataURI("data:image/png;base64")
	assert.Error(t, err)
	_, _, err = DecodeDataURI("data:image/png;base64,@@@")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "nanobanana-1700000000123.png", Filename(now, "image/png"))
	assert.Equal(t, "nanobanana-1700000000123.jpg", Filename(now, "image/jpeg"))
	assert.Equal(t, "nanobanana-1700000000123.png", Filename(now, "application/octet-stream"))
}

func TestDownload_DataURI(t *testing.T) {
	d := NewDownloader(nil, nil, nil)
	d.now = func() time.Time { return time.UnixMilli(42) }

	got, err := d.Download(context.Background(), "data:image/webp;base64,QUJD")
	require.NoError(t, err)
	assert.Equal(t, "nanobanana-42.webp", got.Filename)
	assert.Equal(t, "image/webp", got.ContentType)
	assert.Equal(t, []byte("ABC"), got.Data)

	_, err = d.Download(context.Background(), "ftp://host/x.png")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestDownload_RemoteUsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png; charset=binary")
		w.Write(pngHeader)
	}))
	defer srv.Close()

	cache := NewCache(t.TempDir(), 10, time.Hour)
	require.NoError(t, cache.Initialize())
	d := NewDownloader(srv.Client(), cache, nil)

	for i := 0; i < 2; i++ {
		got, err := d.Download(context.Background(), srv.URL+"/a.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", got.ContentType)
		assert.Equal(t, pngHeader, got.Data)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.TotalEntries)

	_, err := d.Download(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)
}

func TestDownload_SniffsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(pngHeader)
	}))
	defer srv.Close()

	got, err := NewDownloader(srv.Client(), nil, nil).Download(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.ContentType)
}

func TestCache_EvictionAndReload(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, 2, time.Hour)
	require.NoError(t, cache.Initialize())

	base := time.Now()
	cache.now = func() time.Time { return base }
	require.NoError(t, cache.Put("http://x/1", "image/png", []byte("1")))
	cache.now = func() time.Time { return base.Add(time.Second) }
	require.NoError(t, cache.Put("http://x/2", "image/png", []byte("22")))
	cache.now = func() time.Time { return base.Add(2 * time.Second) }
	require.NoError(t, cache.Put("http://x/3", "image/png", []byte("333")))

	_, _, ok := cache.Get("http://x/1")
	assert.False(t, ok)
	data, _, ok := cache.Get("http://x/3")
	assert.True(t, ok)
	assert.Equal(t, []byte("333"), data)
	assert.Equal(t, int64(5), cache.Stats().TotalSize)

	_, err := os.Stat(filepath.Join(dir, CacheKey("http://x/1")+".img"))
	assert.True(t, os.IsNotExist(err))

	reloaded := NewCache(dir, 2, time.Hour)
	require.NoError(t, reloaded.Initialize())
	assert.Equal(t, 2, reloaded.Stats().TotalEntries)
}

func TestCache_Expiry(t *testing.T) {
	cache := NewCache(t.TempDir(), 10, time.Minute)
	require.NoError(t, cache.Initialize())

	base := time.Now()
	cache.now = func() time.Time { return base }
	require.NoError(t, cache.Put("http://x/1", "image/png", []byte("1")))
	require.NoError(t, cache.Put("http://x/2", "image/png", []byte("2")))

	cache.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, _, ok := cache.Get("http://x/1")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.CleanExpired())
	assert.Equal(t, 0, cache.Stats().TotalEntries)
}
