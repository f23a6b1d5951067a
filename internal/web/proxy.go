package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"NanoVision/server/internal/interfaces"
	"NanoVision/server/internal/upstream"

	"go.uber.org/zap"
)

// ProxyRequest is the body of POST /api/proxy
type ProxyRequest struct {
	Endpoint string          `json:"endpoint"`
	APIKey   string          `json:"apiKey"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

// ProxyModels returns the backend's model list for ?endpoint=&apiKey=
func (h *Handlers) ProxyModels(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")
	apiKey := r.URL.Query().Get("apiKey")
	if strings.TrimSpace(endpoint) == "" || strings.TrimSpace(apiKey) == "" {
		writeError(w, http.StatusBadRequest, "endpoint and apiKey are required")
		return
	}

	models, err := h.deps.Backend.ListModels(r.Context(), endpoint, apiKey)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelList(models))
}

// ProxyForward relays a chat or images request and returns the upstream body untouched
func (h *Handlers) ProxyForward(w http.ResponseWriter, r *http.Request) {
	var req ProxyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Endpoint) == "" || strings.TrimSpace(req.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "endpoint and apiKey are required")
		return
	}
	kind := interfaces.RequestKind(req.Type)
	if kind == "" {
		kind = interfaces.RequestChat
	}
	if kind != interfaces.RequestChat && kind != interfaces.RequestImages {
		writeError(w, http.StatusBadRequest, "type must be chat or images")
		return
	}
	if len(req.Payload) == 0 || string(req.Payload) == "null" {
		writeError(w, http.StatusBadRequest, "payload is required")
		return
	}

	resp, err := h.deps.Backend.Forward(r.Context(), req.Endpoint, req.APIKey, kind, req.Payload)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	if !resp.OK() {
		writeError(w, resp.StatusCode, upstream.ErrorMessage(resp.Body))
		return
	}

	if !json.Valid(resp.Body) {
		h.logger.Warn("upstream returned non-JSON body", zap.String("content_type", resp.ContentType))
		writeError(w, http.StatusBadGateway, "upstream returned a non-JSON response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}

func (h *Handlers) writeUpstreamError(w http.ResponseWriter, err error) {
	var statusErr *upstream.StatusError
	switch {
	case errors.Is(err, upstream.ErrNoEndpoint), errors.Is(err, upstream.ErrNoAPIKey), errors.Is(err, upstream.ErrBadEndpoint):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &statusErr) && statusErr.StatusCode >= 400:
		writeError(w, statusErr.StatusCode, statusErr.Message)
	default:
		h.logger.Warn("upstream request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func modelList(models []interfaces.ModelInfo) map[string]interface{} {
	if models == nil {
		models = []interfaces.ModelInfo{}
	}
	return map[string]interface{}{
		"object": "list",
		"data":   models,
	}
}
