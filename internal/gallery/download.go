// Package gallery prepares generated images for download.
package gallery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxDownloadSize = 64 << 20

var ErrUnsupportedURL = errors.New("unsupported image URL")

// Download is an image ready to be saved by the user
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Downloader resolves data URIs locally and fetches remote images through
// an optional disk cache.
type Downloader struct {
	httpClient *http.Client
	cache      *Cache
	logger     *zap.Logger
	now        func() time.Time
}

func NewDownloader(httpClient *http.Client, cache *Cache, logger *zap.Logger) *Downloader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		httpClient: httpClient,
		cache:      cache,
		logger:     logger.Named("download"),
		now:        time.Now,
	}
}

// Download returns the image bytes behind imageURL
func (d *Downloader) Download(ctx context.Context, imageURL string) (*Download, error) {
	var (
		data        []byte
		contentType string
		err         error
	)
	switch {
	case strings.HasPrefix(imageURL, "data:"):
		data, contentType, err = DecodeDataURI(imageURL)
	case strings.HasPrefix(imageURL, "http://"), strings.HasPrefix(imageURL, "https://"):
		data, contentType, err = d.fetch(ctx, imageURL)
	default:
		return nil, ErrUnsupportedURL
	}
	if err != nil {
		return nil, err
	}

	return &Download{
		Filename:    Filename(d.now(), contentType),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (d *Downloader) fetch(ctx context.Context, imageURL string) ([]byte, string, error) {
	if d.cache != nil {
		if data, contentType, ok := d.cache.Get(imageURL); ok {
			return data, contentType, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("failed to fetch image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxDownloadSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}

	if d.cache != nil {
		if err := d.cache.Put(imageURL, contentType, data); err != nil {
			d.logger.Warn("failed to cache image", zap.Error(err))
		}
	}
	return data, contentType, nil
}

// DecodeDataURI decodes a data: URI into its bytes and media type
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest := strings.TrimPrefix(uri, "data:")
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	meta, payload := rest[:comma], rest[comma+1:]

	isBase64 := false
	contentType := "text/plain"
	for i, part := range strings.Split(meta, ";") {
		switch {
		case i == 0 && part != "":
			contentType = part
		case part == "base64":
			isBase64 = true
		}
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
			}
		}
		return data, contentType, nil
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	return []byte(decoded), contentType, nil
}

// Filename names a download after the current time
func Filename(now time.Time, contentType string) string {
	return fmt.Sprintf("nanobanana-%d.%s", now.UnixMilli(), extension(contentType))
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
