// Package generator turns a prompt and its parameters into a generated
// image through the user-configured backend.
package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"NanoVision/server/internal/appstate"
	"NanoVision/server/internal/interfaces"
	"NanoVision/server/internal/locator"
	"NanoVision/server/internal/models"
	"NanoVision/server/internal/resolution"
	"NanoVision/server/internal/upstream"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const excerptLength = 100

// Service runs one generation at a time and keeps the session's results
type Service struct {
	state     *appstate.State
	backend   interfaces.ImageBackend
	gallery   interfaces.GalleryStore
	history   interfaces.GenerationLog
	publisher interfaces.EventPublisher
	progress  ProgressIndicator
	logger    *zap.Logger
	now       func() time.Time

	pending *atomic.Bool

	mu      sync.RWMutex
	session []models.GeneratedImage
}

// ProgressIndicator is driven while a generation is pending
type ProgressIndicator interface {
	Start()
	Finish()
}

// Option customises a Service
type Option func(*Service)

// WithGenerationLog records every finished generation
func WithGenerationLog(log interfaces.GenerationLog) Option {
	return func(s *Service) { s.history = log }
}

// WithPublisher announces generation lifecycle events
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithProgress drives indicator for the duration of each generation
func WithProgress(indicator ProgressIndicator) Option {
	return func(s *Service) { s.progress = indicator }
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(state *appstate.State, backend interfaces.ImageBackend, gallery interfaces.GalleryStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		state:   state,
		backend: backend,
		gallery: gallery,
		logger:  logger.Named("generator"),
		now:     time.Now,
		pending: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pending reports whether a generation is in flight
func (s *Service) Pending() bool {
	return s.pending.Load()
}

// Session returns this session's images, newest first
func (s *Service) Session() []models.GeneratedImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GeneratedImage, len(s.session))
	copy(out, s.session)
	return out
}

// Generate validates params, calls the backend and returns the located image.
// A call made while another is pending fails with ErrGenerationInProgress.
func (s *Service) Generate(ctx context.Context, params models.GenerationParams) (*models.GeneratedImage, error) {
	cfg := s.state.APIConfig()
	if !cfg.Complete() {
		return nil, &ConfigError{Field: "api", Message: "please configure the API endpoint and key first"}
	}
	if strings.TrimSpace(params.Prompt) == "" {
		return nil, &ConfigError{Field: "prompt", Message: "please enter a prompt"}
	}

	if !s.pending.CompareAndSwap(false, true) {
		return nil, ErrGenerationInProgress
	}
	defer s.pending.Store(false)

	// Once dispatched the request runs to completion and is saved even if
	// the caller goes away.
	ctx = context.WithoutCancel(ctx)

	if s.progress != nil {
		s.progress.Start()
		defer s.progress.Finish()
	}

	start := s.now()
	s.publish(interfaces.EventGenerationStarted, map[string]interface{}{"prompt": params.Prompt})

	img, size, err := s.generate(ctx, cfg, params)

	record := interfaces.GenerationRecord{
		Model:      firstNonEmpty(params.Model, cfg.Model),
		Format:     string(cfg.APIFormat),
		Size:       size,
		Success:    err == nil,
		DurationMs: s.now().Sub(start).Milliseconds(),
		Timestamp:  start.UnixMilli(),
	}
	if err != nil {
		record.Error = err.Error()
		s.logger.Warn("generation failed",
			zap.String("model", record.Model),
			zap.String("kind", ErrorKind(err)),
			zap.Error(err),
		)
		s.publish(interfaces.EventGenerationFailed, map[string]string{"error": err.Error()})
		s.recordHistory(record)
		return nil, err
	}

	if s.gallery != nil {
		if _, saveErr := s.gallery.Save(ctx, img); saveErr != nil {
			s.logger.Error("failed to save image to gallery", zap.Error(saveErr))
		}
	}

	s.mu.Lock()
	s.session = append([]models.GeneratedImage{*img}, s.session...)
	s.mu.Unlock()

	s.logger.Info("generation finished",
		zap.String("model", record.Model),
		zap.String("size", size),
		zap.Int64("duration_ms", record.DurationMs),
	)
	s.recordHistory(record)
	s.publish(interfaces.EventGenerationFinished, img)
	return img, nil
}

func (s *Service) generate(ctx context.Context, cfg models.APIConfig, params models.GenerationParams) (*models.GeneratedImage, string, error) {
	width, height := resolution.Resolve(params.AspectRatio, resolution.ParseBaseSize(params.Resolution))
	size := sizeString(width, height)

	model := firstNonEmpty(params.Model, cfg.Model)
	if model == "" {
		return nil, size, &ConfigError{Field: "model", Message: "please select or enter a model name"}
	}

	var (
		kind    interfaces.RequestKind
		payload interface{}
	)
	if cfg.APIFormat == models.APIFormatImages {
		kind = interfaces.RequestImages
		payload = BuildImagesPayload(params, model, width, height)
	} else {
		kind = interfaces.RequestChat
		payload = BuildChatPayload(params, model, width, height)
	}

	resp, err := s.backend.Forward(ctx, cfg.Endpoint, cfg.APIKey, kind, payload)
	if err != nil {
		if errors.Is(err, upstream.ErrNoEndpoint) || errors.Is(err, upstream.ErrBadEndpoint) || errors.Is(err, upstream.ErrNoAPIKey) {
			return nil, size, &ConfigError{Field: "api", Message: err.Error()}
		}
		return nil, size, &UpstreamError{Message: err.Error(), Err: err}
	}
	if !resp.OK() {
		return nil, size, &UpstreamError{StatusCode: resp.StatusCode, Message: upstream.ErrorMessage(resp.Body)}
	}

	url, ok := locator.LocateBytes(resp.Body)
	if !ok {
		s.logger.Debug("no image in upstream response", zap.ByteString("body", truncateBytes(resp.Body, 2048)))
		if kind == interfaces.RequestChat {
			return nil, size, &NoImageError{Excerpt: locator.ContentExcerpt(resp.Body, excerptLength)}
		}
		return nil, size, &NoImageError{}
	}

	return &models.GeneratedImage{
		URL:            url,
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Timestamp:      s.now().UnixMilli(),
		Params:         params,
	}, size, nil
}

func (s *Service) recordHistory(record interfaces.GenerationRecord) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.history.RecordGeneration(ctx, record); err != nil {
		s.logger.Warn("failed to record generation", zap.Error(err))
	}
}

func (s *Service) publish(eventType string, data interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(eventType, data)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateBytes(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// ErrorKind names the category of a Generate error
func ErrorKind(err error) string {
	var cfgErr *ConfigError
	var upErr *UpstreamError
	var noImg *NoImageError
	switch {
	case errors.As(err, &cfgErr):
		return "config"
	case errors.As(err, &upErr):
		return "upstream"
	case errors.As(err, &noImg):
		return "no_image"
	case errors.Is(err, ErrGenerationInProgress):
		return "in_progress"
	default:
		return "unknown"
	}
}
