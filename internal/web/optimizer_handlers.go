package web

import (
	"errors"
	"net/http"

	"NanoVision/server/internal/optimizer"
)

func (h *Handlers) GetOptimizerMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": h.deps.Optimizer.Messages(),
		"busy":     h.deps.Optimizer.Busy(),
	})
}

func (h *Handlers) SendOptimizerMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.deps.Optimizer.Send(r.Context(), req.Message)
	switch {
	case errors.Is(err, optimizer.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, optimizer.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, msg)
	}
}

func (h *Handlers) ClearOptimizerMessages(w http.ResponseWriter, r *http.Request) {
	h.deps.Optimizer.Clear()
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": h.deps.Optimizer.Messages()})
}
