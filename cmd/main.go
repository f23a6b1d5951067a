package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NanoVision/server/internal/appstate"
	"NanoVision/server/internal/config"
	"NanoVision/server/internal/gallery"
	"NanoVision/server/internal/generator"
	"NanoVision/server/internal/interfaces"
	"NanoVision/server/internal/logging"
	"NanoVision/server/internal/optimizer"
	"NanoVision/server/internal/progress"
	"NanoVision/server/internal/storage"
	"NanoVision/server/internal/upstream"
	"NanoVision/server/internal/web"

	"go.uber.org/zap"
)

func main() {
	configPath := "configs/config.yaml"
	if v := os.Getenv("NANOVISION_CONFIG"); v != "" {
		configPath = v
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage connections
	sqlStore, err := storage.NewSQLStore(cfg.Database)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer sqlStore.Close()
	logger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	var redisStore *storage.RedisStore
	if cfg.Database.Redis.Enabled {
		redisStore, err = storage.NewRedisStore(cfg.Database.Redis)
		if err != nil {
			logger.Warn("failed to connect to redis, continuing without it", zap.Error(err))
			redisStore = nil
		} else {
			defer redisStore.Close()
			logger.Info("redis connected")
		}
	}

	// Settings live in Redis when it is available
	var settings interfaces.SettingsStore = sqlStore.Settings()
	var history interfaces.GenerationLog
	if redisStore != nil {
		settings = redisStore
		history = redisStore
	}

	state := appstate.New(settings, cfg, logger)
	if err := state.Load(ctx); err != nil {
		logger.Warn("failed to load saved settings", zap.Error(err))
	}

	client := upstream.NewClient(cfg.Upstream.Timeout, logger)

	hub := web.NewEventHub(logger)
	go hub.Run(ctx)

	anim := progress.NewAnimation()
	anim.Subscribe(func(v float64) {
		hub.Publish(interfaces.EventProgress, map[string]float64{"value": v})
	})

	genOpts := []generator.Option{
		generator.WithPublisher(hub),
		generator.WithProgress(anim),
	}
	if history != nil {
		genOpts = append(genOpts, generator.WithGenerationLog(history))
	}
	gen := generator.NewService(state, client, sqlStore.Gallery(), logger, genOpts...)

	cache := gallery.NewCache(cfg.Gallery.CacheDir, cfg.Gallery.CacheMaxEntries, cfg.Gallery.CacheTTL)
	if err := cache.Initialize(); err != nil {
		logger.Warn("failed to initialize image cache", zap.String("dir", cfg.Gallery.CacheDir), zap.Error(err))
	}
	go cleanCache(ctx, cache, logger)

	deps := web.Dependencies{
		Config:     cfg,
		State:      state,
		Backend:    client,
		Generator:  gen,
		Optimizer:  optimizer.NewSession(state, client, logger),
		Gallery:    sqlStore.Gallery(),
		History:    history,
		Downloader: gallery.NewDownloader(&http.Client{Timeout: cfg.Upstream.Timeout}, cache, logger),
		Progress:   anim,
		Hub:        hub,
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      web.NewRouter(deps, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in background
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func cleanCache(ctx context.Context, cache *gallery.Cache, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := cache.CleanExpired(); n > 0 {
				logger.Debug("image cache cleaned", zap.Int("removed", n))
			}
		}
	}
}
