package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ztoursph/booking-api/internal/storage"
)

// FileHandler serves stored documents behind signed URLs.
type FileHandler struct {
	store  *storage.Store
	logger *slog.Logger
}

func NewFileHandler(store *storage.Store, logger *slog.Logger) *FileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileHandler{store: store, logger: logger}
}

func (h *FileHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	bucket, key := chi.URLParam(r, "bucket"), chi.URLParam(r, "key")

	err := h.store.Verify(r.URL.Query().Get("token"), bucket, key)
	switch {
	case errors.Is(err, storage.ErrExpired):
		http.Error(w, "Download link expired", http.StatusGone)
		return
	case err != nil:
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	obj, err := h.store.GetObject(r.Context(), bucket, key)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to read object", "bucket", bucket, "key", key, "error", err)
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", obj.MediaType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", obj.Key+".pdf"))
	w.Write(obj.Body)
}
