package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"NanoVision/server/internal/gallery"
	"NanoVision/server/internal/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListImages returns the persisted gallery; ?favorites=true filters
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.deps.Gallery.List(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if onlyFav, _ := strconv.ParseBool(r.URL.Query().Get("favorites")); onlyFav {
		filtered := make([]models.StoredImage, 0, len(images))
		for _, img := range images {
			if img.Favorite {
				filtered = append(filtered, img)
			}
		}
		images = filtered
	}
	if images == nil {
		images = []models.StoredImage{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"images": images})
}

func (h *Handlers) GetImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.deps.Gallery.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	img, err := h.deps.Gallery.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Gallery.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ClearImages(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Gallery.Clear(r.Context()); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadImage streams the image as an attachment
func (h *Handlers) DownloadImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.deps.Gallery.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	dl, err := h.deps.Downloader.Download(r.Context(), img.URL)
	if err != nil {
		if errors.Is(err, gallery.ErrUnsupportedURL) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Warn("download failed", zap.String("id", img.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(dl.Data)
}
