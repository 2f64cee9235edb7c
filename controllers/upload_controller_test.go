package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecotrade/ecotrade-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupUploadRouter(t *testing.T) *services.MemoryStore {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := services.NewMemoryStore("/api/v1/uploads")
	services.SetPhotoService(services.NewPhotoService(store, zap.NewNop()))
	t.Cleanup(func() { services.SetPhotoService(nil) })
	return store
}

func serveUpload(path string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/api/v1/uploads/*key", GetUploadedImage)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetUploadedImage_Success(t *testing.T) {
	store := setupUploadRouter(t)
	testContent := []byte("fake PNG content")
	require.NoError(t, store.PutObject(context.Background(), "products/test_image.png", testContent, "image/png"))

	w := serveUpload("/api/v1/uploads/products/test_image.png")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
	assert.Equal(t, testContent, w.Body.Bytes())
}

func TestGetUploadedImage_FileNotFound(t *testing.T) {
	setupUploadRouter(t)

	w := serveUpload("/api/v1/uploads/products/nonexistent.png")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_NOT_FOUND")
	assert.Contains(t, w.Body.String(), "Image not found")
}

func TestGetUploadedImage_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	services.SetPhotoService(nil)

	w := serveUpload("/api/v1/uploads/products/a.png")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUploadedImage_EmptyFilename(t *testing.T) {
	setupUploadRouter(t)

	w := serveUpload("/api/v1/uploads/")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestGetUploadedImage_DirectoryTraversal(t *testing.T) {
	setupUploadRouter(t)

	for _, path := range []string{
		"/api/v1/uploads/products/..%2F..%2Fsecret.png",
		"/api/v1/uploads/products/..%5Csecret.png",
	} {
		w := serveUpload(path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), "INVALID_FILENAME", path)
	}
}

func TestGetUploadedImage_InvalidExtension(t *testing.T) {
	setupUploadRouter(t)

	w := serveUpload("/api/v1/uploads/products/document.pdf")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_FILE_TYPE")
}
