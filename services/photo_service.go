package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ecotrade/ecotrade-api/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Folders photos are stored under
const (
	ProductPhotoFolder = "products"
	PlasticPhotoFolder = "plastic-submissions"
)

// PhotoService validates uploaded photos and stores them in an ObjectStore
type PhotoService struct {
	store  ObjectStore
	logger *zap.Logger
}

var photoServiceInstance *PhotoService

// NewPhotoService creates a photo service on top of store
func NewPhotoService(store ObjectStore, logger *zap.Logger) *PhotoService {
	return &PhotoService{store: store, logger: logger}
}

// InitPhotoService installs the process-wide photo service
func InitPhotoService(store ObjectStore, logger *zap.Logger) *PhotoService {
	photoServiceInstance = NewPhotoService(store, logger)
	return photoServiceInstance
}

// GetPhotoService returns the initialized photo service, nil when uploads are disabled
func GetPhotoService() *PhotoService {
	return photoServiceInstance
}

// SetPhotoService sets the photo service instance (primarily for testing)
func SetPhotoService(service *PhotoService) {
	photoServiceInstance = service
}

// Upload validates fileHeader and stores it under folder, returning the object key
func (s *PhotoService) Upload(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error) {
	if s == nil {
		return "", newError(KindInvalidOperation, "photo uploads are not configured")
	}

	content, err := utils.ReadUploadedFile(fileHeader)
	if err != nil {
		return "", err
	}
	contentType, _ := utils.ImageContentType(fileHeader.Filename)

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), strings.ToLower(filepath.Ext(fileHeader.Filename)))
	if err := s.store.PutObject(ctx, key, content, contentType); err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	s.logger.Info("photo uploaded", zap.String("key", key), zap.Int("bytes", len(content)))
	return key, nil
}

// URL returns a client-facing URL for key. A missing key or service yields "".
func (s *PhotoService) URL(ctx context.Context, key string) string {
	if s == nil || key == "" {
		return ""
	}
	url, err := s.store.URL(ctx, key)
	if err != nil {
		s.logger.Warn("failed to resolve photo URL", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

// Open returns the stored bytes and content type of key
func (s *PhotoService) Open(ctx context.Context, key string) ([]byte, string, error) {
	if s == nil {
		return nil, "", newError(KindNotFound, "file not found: %s", key)
	}
	return s.store.GetObject(ctx, key)
}

// Delete removes key; failures are logged since the owning row is already updated
func (s *PhotoService) Delete(ctx context.Context, key string) {
	if s == nil || key == "" {
		return
	}
	if err := s.store.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("failed to delete photo", zap.String("key", key), zap.Error(err))
	}
}
