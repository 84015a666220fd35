package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/promptpix/apiserver/internal/storage"
)

const (
	maxImageBytes       = 32 << 20
	imageKeyPrefix      = "images/"
	defaultFetchTimeout = 30 * time.Second
)

// ImageHandler copies generated images from their provider URL into
// the configured object storage backend.
type ImageHandler struct {
	store      storage.ObjectStore
	httpClient *http.Client
}

func NewImageHandler(store storage.ObjectStore) *ImageHandler {
	return &ImageHandler{
		store:      store,
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
	}
}

// ImageRouter registers image routes on the given router. The store may
// be nil when no storage backend is configured; the routes then answer
// with a configuration error.
func ImageRouter(r chi.Router, store storage.ObjectStore) {
	handler := NewImageHandler(store)
	r.Post("/upload-image", handler.Upload)
	r.Get("/images/{filename}", handler.Serve)
}

type UploadRequest struct {
	ImageURL string `json:"imageUrl"`
	Filename string `json:"filename"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.ImageURL = strings.TrimSpace(req.ImageURL)
	req.Filename = strings.TrimSpace(req.Filename)
	if req.ImageURL == "" || req.Filename == "" {
		writeError(w, http.StatusBadRequest, "imageUrl and filename required")
		return
	}

	if h.store == nil {
		writeError(w, http.StatusInternalServerError, "storage not configured")
		return
	}

	filename, err := sanitizeFilename(req.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, contentType, err := h.fetchImage(r, req.ImageURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to fetch image from URL")
		return
	}

	key := imageKeyPrefix + filename
	if err := h.store.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{Success: true, Path: key})
}

// Serve streams a previously uploaded image back out of storage.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusInternalServerError, "storage not configured")
		return
	}

	filename, err := sanitizeFilename(chi.URLParam(r, "filename"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, contentType, err := h.store.Get(r.Context(), imageKeyPrefix+filename)
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer reader.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func (h *ImageHandler) fetchImage(r *http.Request, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", errors.New("unexpected status fetching image")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxImageBytes {
		return nil, "", errors.New("image too large")
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func sanitizeFilename(raw string) (string, error) {
	filename := path.Base(strings.TrimSpace(raw))
	if filename == "" || filename == "." || filename == "/" || strings.Contains(filename, "..") {
		return "", errors.New("invalid filename")
	}
	return filename, nil
}
