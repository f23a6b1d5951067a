package web

import (
	"errors"
	"io"
	"net/http"

	"NanoVision/server/internal/models"
)

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.State.Snapshot())
}

func (h *Handlers) GetAPIConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.State.APIConfig())
}

func (h *Handlers) PutAPIConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.APIConfig
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if cfg.APIFormat != "" && cfg.APIFormat != models.APIFormatChat && cfg.APIFormat != models.APIFormatImages {
		writeError(w, http.StatusBadRequest, "apiFormat must be chat or images")
		return
	}
	if err := h.deps.State.SaveAPIConfig(r.Context(), cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.deps.State.APIConfig())
}

// TestAPIConfig lists models with the posted config, or the saved one when
// the body is empty.
func (h *Handlers) TestAPIConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.deps.State.APIConfig()
	var posted models.APIConfig
	if err := decodeJSON(r, &posted); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if posted.Endpoint != "" || posted.APIKey != "" {
		cfg = posted
	}
	h.testConnection(w, r, cfg.Endpoint, cfg.APIKey)
}

func (h *Handlers) GetAssistantConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.State.AssistantConfig())
}

func (h *Handlers) PutAssistantConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.AssistantConfig
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.deps.State.SaveAssistantConfig(r.Context(), cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.deps.State.AssistantConfig())
}

// TestAssistantConfig checks the assistant backend, falling back to the
// image backend for missing fields like the optimizer does.
func (h *Handlers) TestAssistantConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.deps.State.AssistantConfig()
	var posted models.AssistantConfig
	if err := decodeJSON(r, &posted); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if posted.Endpoint != "" || posted.APIKey != "" {
		cfg = posted
	}
	api := h.deps.State.APIConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = api.Endpoint
	}
	if cfg.APIKey == "" {
		cfg.APIKey = api.APIKey
	}
	h.testConnection(w, r, cfg.Endpoint, cfg.APIKey)
}

func (h *Handlers) testConnection(w http.ResponseWriter, r *http.Request, endpoint, apiKey string) {
	models, err := h.deps.Backend.ListModels(r.Context(), endpoint, apiKey)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"count":  len(models),
		"models": models,
	})
}

// ListModels uses the saved image backend config
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	cfg := h.deps.State.APIConfig()
	if !cfg.Complete() {
		writeError(w, http.StatusBadRequest, "please configure the API endpoint and key first")
		return
	}
	models, err := h.deps.Backend.ListModels(r.Context(), cfg.Endpoint, cfg.APIKey)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelList(models))
}

type themeResponse struct {
	Theme             models.Theme         `json:"theme"`
	Settings          models.ThemeSettings `json:"settings"`
	GlassBlur         string               `json:"glassBlur"`
	BackgroundOpacity float64              `json:"backgroundOpacity"`
}

func (h *Handlers) themeState() themeResponse {
	snap := h.deps.State.Snapshot()
	return themeResponse{
		Theme:             snap.Theme,
		Settings:          snap.ThemeSettings,
		GlassBlur:         h.deps.State.GlassBlur(),
		BackgroundOpacity: h.deps.State.BackgroundOpacity(),
	}
}

func (h *Handlers) GetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.themeState())
}

type themeUpdate struct {
	Theme models.Theme `json:"theme,omitempty"`
	models.ThemeSettingsPatch
}

// PutTheme sets the theme and merges any provided theme settings
func (h *Handlers) PutTheme(w http.ResponseWriter, r *http.Request) {
	var req themeUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Theme != "" {
		if err := h.deps.State.SetTheme(r.Context(), req.Theme); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.GlassEffect != nil || req.Transparency != nil {
		if _, err := h.deps.State.UpdateThemeSettings(r.Context(), req.ThemeSettingsPatch); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, h.themeState())
}

func (h *Handlers) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	if _, err := h.deps.State.ToggleTheme(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.themeState())
}
