package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"NanoVision/server/internal/appstate"
	"NanoVision/server/internal/config"
	"NanoVision/server/internal/gallery"
	"NanoVision/server/internal/generator"
	"NanoVision/server/internal/interfaces"
	"NanoVision/server/internal/optimizer"
	"NanoVision/server/internal/progress"
	"NanoVision/server/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Dependencies are the services the HTTP surface is built on. History may
// be nil when Redis is disabled.
type Dependencies struct {
	Config     *config.Config
	State      *appstate.State
	Backend    interfaces.ImageBackend
	Generator  *generator.Service
	Optimizer  *optimizer.Session
	Gallery    interfaces.GalleryStore
	History    interfaces.GenerationLog
	Downloader *gallery.Downloader
	Progress   *progress.Animation
	Hub        *EventHub
}

type Handlers struct {
	deps   Dependencies
	logger *zap.Logger
}

func NewHandlers(deps Dependencies, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{deps: deps, logger: logger.Named("web")}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "nanovision",
	})
}

// CORS middleware
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func NewRouter(deps Dependencies, logger *zap.Logger) *chi.Mux {
	h := NewHandlers(deps, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))
	r.Use(corsMiddleware)

	r.Get("/health", h.HealthCheck)

	// Same-origin proxy towards the user's backend
	r.Route("/api/proxy", func(r chi.Router) {
		r.Get("/", h.ProxyModels)
		r.Post("/", h.ProxyForward)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/presets", h.GetPresets)
		r.Get("/resolution", h.GetResolution)

		r.Route("/generate", func(r chi.Router) {
			r.Post("/", h.Generate)
			r.Get("/status", h.GenerateStatus)
			r.Get("/history", h.GenerateHistory)
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/", h.ListImages)
			r.Delete("/", h.ClearImages)
			r.Get("/session", h.SessionImages)
			r.Get("/{id}", h.GetImage)
			r.Delete("/{id}", h.DeleteImage)
			r.Post("/{id}/favorite", h.ToggleFavorite)
			r.Get("/{id}/download", h.DownloadImage)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Get("/api", h.GetAPIConfig)
			r.Put("/api", h.PutAPIConfig)
			r.Post("/api/test", h.TestAPIConfig)
			r.Get("/assistant", h.GetAssistantConfig)
			r.Put("/assistant", h.PutAssistantConfig)
			r.Post("/assistant/test", h.TestAssistantConfig)
			r.Get("/theme", h.GetTheme)
			r.Put("/theme", h.PutTheme)
			r.Post("/theme/toggle", h.ToggleTheme)
		})

		r.Get("/models", h.ListModels)

		r.Route("/optimizer/messages", func(r chi.Router) {
			r.Get("/", h.GetOptimizerMessages)
			r.Post("/", h.SendOptimizerMessage)
			r.Delete("/", h.ClearOptimizerMessages)
		})

		r.Get("/events", h.Events)
	})

	return r
}

// Events upgrades to a WebSocket that receives progress and generation events
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	if h.deps.Hub == nil {
		writeError(w, http.StatusServiceUnavailable, "event hub not initialized")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  h.deps.Hub,
	}
	h.deps.Hub.register <- client

	welcome, _ := json.Marshal(Event{Type: "connected", Data: map[string]string{"id": client.ID}, Time: time.Now().UnixMilli()})
	select {
	case client.Send <- welcome:
	default:
	}

	go client.readPump()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps storage failures to HTTP statuses
func (h *Handlers) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	h.logger.Error("storage failure", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 10<<20))
	return dec.Decode(v)
}
