package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
	}
}

func (f *fakeObjectStore) EnsureBucket(ctx context.Context) error {
	return nil
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.contentTypes[key] = contentType
	return nil
}

func (f *fakeObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), f.contentTypes[key], nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	delete(f.contentTypes, key)
	return nil
}

func (f *fakeObjectStore) Bucket() string {
	return "test-bucket"
}

func newImageRouter(store *fakeObjectStore) *chi.Mux {
	router := chi.NewRouter()
	if store == nil {
		ImageRouter(router, nil)
	} else {
		ImageRouter(router, store)
	}
	return router
}

func TestUpload(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer source.Close()

	store := newFakeObjectStore()
	router := newImageRouter(store)

	rec := postJSON(t, router, "/upload-image", UploadRequest{
		ImageURL: source.URL,
		Filename: "fox.png",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("png-bytes"), store.objects["images/fox.png"])
	assert.Equal(t, "image/png", store.contentTypes["images/fox.png"])
}

func TestUploadMissingFields(t *testing.T) {
	router := newImageRouter(newFakeObjectStore())

	rec := postJSON(t, router, "/upload-image", UploadRequest{Filename: "fox.png"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "imageUrl and filename required", decodeError(t, rec))
}

func TestUploadWithoutStorage(t *testing.T) {
	router := newImageRouter(nil)

	rec := postJSON(t, router, "/upload-image", UploadRequest{
		ImageURL: "https://img.example/fox.png",
		Filename: "fox.png",
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "storage not configured", decodeError(t, rec))
}

func TestUploadSourceFailure(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer source.Close()

	router := newImageRouter(newFakeObjectStore())

	rec := postJSON(t, router, "/upload-image", UploadRequest{
		ImageURL: source.URL,
		Filename: "fox.png",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Failed to fetch image from URL", decodeError(t, rec))
}

func TestServeKeepsContentType(t *testing.T) {
	store := newFakeObjectStore()
	require.NoError(t, store.Put(context.Background(), "images/fox.png", bytes.NewReader([]byte("png-bytes")), 9, "image/png"))

	router := newImageRouter(store)
	req := httptest.NewRequest(http.MethodGet, "/images/fox.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("png-bytes"), rec.Body.Bytes())
}

func TestServeMissingImage(t *testing.T) {
	router := newImageRouter(newFakeObjectStore())

	req := httptest.NewRequest(http.MethodGet, "/images/ghost.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
