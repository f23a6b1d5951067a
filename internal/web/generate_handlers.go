package web

import (
	"errors"
	"net/http"
	"strconv"

	"NanoVision/server/internal/generator"
	"NanoVision/server/internal/models"
	"NanoVision/server/internal/resolution"
)

func (h *Handlers) GetPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"aspectRatios": resolution.AspectRatios(),
		"resolutions":  resolution.Resolutions(),
		"steps":        resolution.StepPresets(),
		"defaults":     h.defaultParams(),
	})
}

// GetResolution resolves ?ratio=&base= into pixel dimensions
func (h *Handlers) GetResolution(w http.ResponseWriter, r *http.Request) {
	ratio := r.URL.Query().Get("ratio")
	if ratio == "" {
		ratio = resolution.DefaultRatio
	}
	base := resolution.ParseBaseSize(r.URL.Query().Get("base"))
	width, height := resolution.Resolve(ratio, base)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ratio":     ratio,
		"supported": resolution.Supported(ratio),
		"base":      base,
		"width":     width,
		"height":    height,
	})
}

func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	params := h.defaultParams()
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	img, err := h.deps.Generator.Generate(r.Context(), params)
	if err != nil {
		writeError(w, generateStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func generateStatus(err error) int {
	var cfgErr *generator.ConfigError
	var upErr *generator.UpstreamError
	var noImg *generator.NoImageError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrGenerationInProgress):
		return http.StatusConflict
	case errors.As(err, &noImg):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) GenerateStatus(w http.ResponseWriter, r *http.Request) {
	value := 0.0
	if h.deps.Progress != nil {
		value = h.deps.Progress.Value()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pending":  h.deps.Generator.Pending(),
		"progress": value,
	})
}

// GenerateHistory lists recent generation attempts from the Redis log
func (h *Handlers) GenerateHistory(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, "generation history requires redis")
		return
	}
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	records, err := h.deps.History.RecentGenerations(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": records})
}

func (h *Handlers) SessionImages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"images": h.deps.Generator.Session()})
}

func (h *Handlers) defaultParams() models.GenerationParams {
	params := models.DefaultGenerationParams()
	if cfg := h.deps.Config; cfg != nil {
		params.AspectRatio = cfg.Defaults.AspectRatio
		params.Resolution = cfg.Defaults.Resolution
		params.Steps = cfg.Defaults.Steps
		params.Guidance = cfg.Defaults.Guidance
	}
	return params
}
