package delivery

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/example/mediachat/internal/ports"
	"github.com/go-chi/chi/v5"
)

type MediaHandler struct {
	store ports.MediaStore
	log   *logger.ZapLogger
}

func NewMediaHandler(store ports.MediaStore, log *logger.ZapLogger) *MediaHandler {
	return &MediaHandler{
		store: store,
		log:   log,
	}
}

// GET /api/media
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	lib, err := h.store.List()
	if err != nil {
		http.Error(w, "failed to list media: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(lib)
}

// POST /api/upload
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, false)
}

// POST /api/upload/temp
func (h *MediaHandler) UploadTemp(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, true)
}

func (h *MediaHandler) upload(w http.ResponseWriter, r *http.Request, isTemp bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload: "+err.Error())
		return
	}

	item, err := h.store.Commit(data, header.Filename, isTemp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "media uploaded",
		Fields: map[string]any{
			"name": item.Name,
			"type": item.Type,
			"size": item.Size,
			"temp": item.IsTemp,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(item)
}

// GET /api/{bucket}/{name}
func (h *MediaHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	name := filepath.Base(chi.URLParam(r, "name"))

	path := filepath.Join(h.store.Dir(bucket), name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	http.ServeFile(w, r, path)
}

// DELETE /api/temp/{name}
func (h *MediaHandler) DeleteTemp(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.store.DeleteTemp(name) {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Deleted " + name,
	})
}

// DELETE /api/temp
func (h *MediaHandler) CleanTemp(w http.ResponseWriter, r *http.Request) {
	count := h.store.CleanTemp()

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "temp files cleaned",
		Fields:  map[string]any{"deleted": count},
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":      true,
		"deletedCount": count,
		"message":      fmt.Sprintf("Deleted %d temp files", count),
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
